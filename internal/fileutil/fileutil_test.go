package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum, size, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if size != 11 {
		t.Fatalf("size = %d, want 11", size)
	}
	const want = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if sum != want {
		t.Fatalf("sum = %s, want %s", sum, want)
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, _, err := HashFile(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestSameContent(t *testing.T) {
	dir := t.TempDir()
	large := bytes.Repeat([]byte{0x42}, compareChunk*2+17)
	changed := bytes.Clone(large)
	changed[len(changed)-1] = 0x43

	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	a := write("a", large)
	b := write("b", large)
	c := write("c", changed)
	d := write("d", large[:10])
	e := write("e", nil)
	f := write("f", nil)

	cases := []struct {
		name string
		x, y string
		want bool
	}{
		{"identical", a, b, true},
		{"last byte differs", a, c, false},
		{"different size", a, d, false},
		{"both empty", e, f, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SameContent(tc.x, tc.y)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("SameContent = %v, want %v", got, tc.want)
			}
		})
	}
}
