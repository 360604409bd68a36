package recipe

import (
	"fmt"
	"strings"
)

// Medium identifies the kind of content a recipe produces.
type Medium string

const (
	MediumAnimation Medium = "animation"
	MediumAudio     Medium = "audio"
	MediumImage     Medium = "image"
	MediumVideo     Medium = "video"
)

// Media lists the supported mediums in canonical order.
func Media() []Medium {
	return []Medium{MediumAnimation, MediumAudio, MediumImage, MediumVideo}
}

// Valid reports whether m is a supported medium.
func (m Medium) Valid() bool {
	switch m {
	case MediumAnimation, MediumAudio, MediumImage, MediumVideo:
		return true
	}
	return false
}

// ParseMedium converts a user supplied value into a Medium.
func ParseMedium(value string) (Medium, error) {
	m := Medium(strings.ToLower(strings.TrimSpace(value)))
	if !m.Valid() {
		return "", fmt.Errorf("unsupported medium %q (expected one of animation, audio, image, video)", value)
	}
	return m, nil
}

// Tool identifies the external program a recipe drives.
type Tool string

const (
	ToolFFmpeg      Tool = "ffmpeg"
	ToolImageMagick Tool = "imagemagick"
)

// Valid reports whether t is a supported tool.
func (t Tool) Valid() bool {
	return t == ToolFFmpeg || t == ToolImageMagick
}

// Recipe is a validated recipe document.
type Recipe struct {
	Base      Base
	Variation []Axis
	// Source names where the recipe came from (file path or built-in name).
	Source string
}

// Base describes the fixed target of generation.
type Base struct {
	Codec        string
	Container    string
	Library      string
	Medium       Medium
	Tool         Tool
	DefaultFlags []FlagGroup
}

// FlagGroup is a named, ordered run of default flag tokens.
type FlagGroup struct {
	Name  string
	Flags []string
}

// Axis is a named dimension of variation. Each tuple is one alternative.
type Axis struct {
	Name   string
	Tuples [][]string
}

// Description returns "medium/library/codec/container".
func (r *Recipe) Description() string {
	return strings.Join([]string{string(r.Base.Medium), r.Base.Library, r.Base.Codec, r.Base.Container}, "/")
}

// Name returns a short display name for the recipe.
func (r *Recipe) Name() string {
	if r.Source != "" {
		return r.Source
	}
	return r.Description()
}

// Selection records which tuple of an axis an invocation uses.
type Selection struct {
	Axis  string
	Index int
}

// Invocation is one fully materialized command line. Tokens[0] is the tool
// identifier; the remaining tokens are flags in emission order.
type Invocation struct {
	Tokens     []string
	Selections []Selection
}

// Tool returns the tool identifier the invocation targets.
func (inv Invocation) Tool() Tool {
	if len(inv.Tokens) == 0 {
		return ""
	}
	return Tool(inv.Tokens[0])
}

// Args returns the flag tokens following the tool identifier.
func (inv Invocation) Args() []string {
	if len(inv.Tokens) <= 1 {
		return nil
	}
	return inv.Tokens[1:]
}

// Label renders the selections as "axis-NN" parts joined by dashes. It is
// used to build filesystem safe output names.
func (inv Invocation) Label() string {
	parts := make([]string, 0, len(inv.Selections))
	for _, sel := range inv.Selections {
		parts = append(parts, fmt.Sprintf("%s-%02d", sel.Axis, sel.Index))
	}
	return strings.Join(parts, "-")
}

// String renders the invocation as a space separated command line.
func (inv Invocation) String() string {
	return strings.Join(inv.Tokens, " ")
}
