package templates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"replicator/internal/recipe"
	"replicator/internal/toolexec"
)

// All selects every template available for a medium.
const All = "all"

// DefaultResolution is used when no resolution is configured.
const DefaultResolution = "1280x768"

var catalog = map[recipe.Medium][]string{
	recipe.MediumAudio:     {"noise", "silence", "sine", "test"},
	recipe.MediumImage:     {"noise", "solid", "test"},
	recipe.MediumVideo:     {"noise", "solid", "test"},
	recipe.MediumAnimation: {"noise", "solid", "test"},
}

// ErrUnknownTemplate is returned for template names a medium does not offer.
var ErrUnknownTemplate = errors.New("unknown template")

// Template is a seed media file used as input for a recipe.
type Template struct {
	Name   string
	Path   string
	Medium recipe.Medium
}

// Options controls the generated content.
type Options struct {
	// Duration in seconds for audio and video. Ignored when Frames > 0.
	Duration int
	// Frames limits video and animation templates to a frame count.
	Frames int
	// Resolution is WIDTHxHEIGHT for image, video, and animation templates.
	Resolution string
}

// Names returns the templates available for medium in display order.
func Names(medium recipe.Medium) []string {
	return slices.Clone(catalog[medium])
}

// Expand resolves the requested names for medium. "all" (or no names) selects
// every template. Duplicates are dropped; order follows first mention.
func Expand(medium recipe.Medium, names []string) ([]string, error) {
	available, ok := catalog[medium]
	if !ok {
		return nil, fmt.Errorf("unsupported medium %q", medium)
	}
	if len(names) == 0 || slices.Contains(names, All) {
		return slices.Clone(available), nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if !slices.Contains(available, name) {
			return nil, fmt.Errorf("%w %q for %s (available: %s)", ErrUnknownTemplate, name, medium, strings.Join(available, ", "))
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// ParseResolution validates WIDTHxHEIGHT and returns the normalized form.
func ParseResolution(value string) (string, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return "", fmt.Errorf("invalid resolution %q (expected WIDTHxHEIGHT)", value)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return "", fmt.Errorf("invalid resolution %q (expected WIDTHxHEIGHT)", value)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return "", fmt.Errorf("invalid resolution %q (expected WIDTHxHEIGHT)", value)
	}
	return fmt.Sprintf("%dx%d", width, height), nil
}

// Command builds the ffmpeg arguments and output path for a template without
// running anything.
func Command(medium recipe.Medium, name, dest string, opts Options) (args []string, output string, err error) {
	if _, err := Expand(medium, []string{name}); err != nil {
		return nil, "", err
	}
	resolution := opts.Resolution
	if resolution == "" {
		resolution = DefaultResolution
	}
	if medium != recipe.MediumAudio {
		if resolution, err = ParseResolution(resolution); err != nil {
			return nil, "", err
		}
	}

	args = []string{"-y", "-f", "lavfi", "-i"}
	switch medium {
	case recipe.MediumAudio:
		if opts.Duration <= 0 {
			return nil, "", errors.New("audio templates require a positive duration")
		}
		args = append(args, audioSource(name), "-c:a", "pcm_s16le", "-t", strconv.Itoa(opts.Duration))
		output = filepath.Join(dest, fmt.Sprintf("template-audio-%s.wav", name))
	case recipe.MediumImage:
		args = append(args, imageSource(name, resolution), "-frames", "1")
		output = filepath.Join(dest, fmt.Sprintf("template-image-%s-%s.png", name, resolution))
	case recipe.MediumVideo, recipe.MediumAnimation:
		if opts.Frames <= 0 && opts.Duration <= 0 {
			return nil, "", errors.New("video templates require a positive duration or frame count")
		}
		args = append(args, videoSource(name, resolution), "-pix_fmt", "yuv420p", "-c:v", "libx264")
		if opts.Frames > 0 {
			args = append(args, "-frames", strconv.Itoa(opts.Frames))
		} else {
			args = append(args, "-t", strconv.Itoa(opts.Duration))
		}
		args = append(args, "-crf", "17")
		output = filepath.Join(dest, fmt.Sprintf("template-%s-%s-%s.mp4", medium, name, resolution))
	}
	return append(args, output), output, nil
}

// Generate creates the named template for medium inside dest using ffmpeg.
func Generate(ctx context.Context, runner *toolexec.Runner, ffmpeg string, medium recipe.Medium, name, dest string, opts Options) (Template, error) {
	args, output, err := Command(medium, name, dest, opts)
	if err != nil {
		return Template{}, err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return Template{}, fmt.Errorf("create template directory: %w", err)
	}
	if err := runner.Run(ctx, toolexec.Command{Binary: ffmpeg, Args: args, LogPath: output + ".log"}); err != nil {
		return Template{}, fmt.Errorf("generate %s template %q: %w", medium, name, err)
	}
	return Template{Name: name, Path: output, Medium: medium}, nil
}

// Remove deletes the template file. A missing file is not an error.
func (t Template) Remove() error {
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove template %s: %w", t.Path, err)
	}
	return nil
}

func audioSource(name string) string {
	switch name {
	case "noise":
		return "anoisesrc=a=0.1:c=white"
	case "silence":
		return "anullsrc"
	case "sine":
		return "sine=frequency=880"
	default:
		return "aevalsrc=sin(2*PI*(360-2.5/2)*t)|sin(2*PI*(360+2.5/2)*t)"
	}
}

func imageSource(name, resolution string) string {
	switch name {
	case "noise":
		return fmt.Sprintf("color=c=gray:s=%s, noise=alls=100:allf=t", resolution)
	case "solid":
		return fmt.Sprintf("color=c=red:s=%s", resolution)
	default:
		return fmt.Sprintf("testsrc=s=%s", resolution)
	}
}

func videoSource(name, resolution string) string {
	if name == "test" {
		return fmt.Sprintf("testsrc2=s=%s", resolution)
	}
	return imageSource(name, resolution)
}
