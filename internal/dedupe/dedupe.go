package dedupe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"replicator/internal/fileutil"
)

// Removal describes a deleted duplicate and the file it matched.
type Removal struct {
	Path   string
	Kept   string
	SHA256 string
	Size   int64
}

type candidate struct {
	path string
	size int64
}

// RemoveDuplicates deletes files in dir (not recursive) whose content matches
// an earlier file in sorted order. Non-regular files are ignored.
func RemoveDuplicates(ctx context.Context, dir string) ([]Removal, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	bySize := make(map[int64][]candidate)
	var sizes []int64
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		if _, seen := bySize[info.Size()]; !seen {
			sizes = append(sizes, info.Size())
		}
		bySize[info.Size()] = append(bySize[info.Size()], candidate{
			path: filepath.Join(dir, entry.Name()),
			size: info.Size(),
		})
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	var removals []Removal
	for _, size := range sizes {
		group := bySize[size]
		if len(group) < 2 {
			continue
		}
		removed, err := dedupeGroup(ctx, group)
		removals = append(removals, removed...)
		if err != nil {
			return removals, err
		}
	}
	sort.Slice(removals, func(i, j int) bool { return removals[i].Path < removals[j].Path })
	return removals, nil
}

// dedupeGroup handles files of equal size. ReadDir returns entries sorted by
// name, so the first file of every digest bucket is the one kept.
func dedupeGroup(ctx context.Context, group []candidate) ([]Removal, error) {
	type kept struct {
		path string
		sum  string
	}
	byDigest := make(map[string][]kept)
	var removals []Removal
	for _, c := range group {
		if err := ctx.Err(); err != nil {
			return removals, err
		}
		sum, _, err := fileutil.HashFile(c.path)
		if err != nil {
			return removals, err
		}
		duplicate := ""
		for _, k := range byDigest[sum] {
			same, err := fileutil.SameContent(k.path, c.path)
			if err != nil {
				return removals, err
			}
			if same {
				duplicate = k.path
				break
			}
		}
		if duplicate == "" {
			byDigest[sum] = append(byDigest[sum], kept{path: c.path, sum: sum})
			continue
		}
		if err := os.Remove(c.path); err != nil {
			return removals, fmt.Errorf("remove duplicate %s: %w", c.path, err)
		}
		removals = append(removals, Removal{Path: c.path, Kept: duplicate, SHA256: sum, Size: c.size})
	}
	return removals, nil
}
