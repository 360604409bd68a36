package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

var baseFields = []string{"codec", "container", "library", "medium", "tool", "default_flags"}

// Parse decodes a YAML or JSON recipe document and validates it. JSON input is
// accepted as YAML flow syntax. source is used in error messages only.
func Parse(data []byte, source string) (*Recipe, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		reason := "document is empty"
		if !errors.Is(err, io.EOF) {
			reason = "malformed document: " + err.Error()
		}
		return nil, &SchemaViolation{Source: source, Path: "$", Reason: reason}
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		v := &SchemaViolation{Source: source, Path: "$", Reason: "multiple documents; a recipe file holds exactly one"}
		if err != nil {
			v.Reason = "malformed document: " + err.Error()
		} else {
			v.Line = extra.Line
		}
		return nil, v
	}
	r, err := Load(&doc)
	if err != nil {
		var sv *SchemaViolation
		if errors.As(err, &sv) {
			sv.Source = source
		}
		return nil, err
	}
	r.Source = source
	return r, nil
}

// LoadFile reads and validates the recipe stored at path.
func LoadFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	return Parse(data, path)
}

// Load validates a parsed document and converts it into a Recipe. The document
// may be a yaml DocumentNode or its root mapping. The first violation found is
// returned as a *SchemaViolation; nothing is returned alongside it.
func Load(document *yaml.Node) (*Recipe, error) {
	if document == nil {
		return nil, violation(nil, "$", "document is empty")
	}
	root := resolve(document)
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, violation(root, "$", "document is empty")
		}
		root = resolve(root.Content[0])
	}
	if root.Kind == 0 {
		return nil, violation(nil, "$", "document is empty")
	}

	fields, err := mapping(root, "$", []string{"base", "variation"})
	if err != nil {
		return nil, err
	}
	for _, required := range []string{"base", "variation"} {
		if _, ok := fields.get(required); !ok {
			return nil, violation(root, "$", fmt.Sprintf("missing required property %q", required))
		}
	}

	baseNode, _ := fields.get("base")
	base, err := loadBase(baseNode)
	if err != nil {
		return nil, err
	}
	variationNode, _ := fields.get("variation")
	axes, err := loadVariation(variationNode)
	if err != nil {
		return nil, err
	}
	return &Recipe{Base: base, Variation: axes}, nil
}

func loadBase(node *yaml.Node) (Base, error) {
	var base Base
	fields, err := mapping(node, "base", baseFields)
	if err != nil {
		return base, err
	}
	for _, required := range baseFields {
		if _, ok := fields.get(required); !ok {
			return base, violation(node, "base", fmt.Sprintf("missing required property %q", required))
		}
	}

	identifiers := []struct {
		key string
		dst *string
	}{
		{"codec", &base.Codec},
		{"container", &base.Container},
		{"library", &base.Library},
	}
	for _, id := range identifiers {
		value, _ := fields.get(id.key)
		s, err := identifier(value, "base."+id.key)
		if err != nil {
			return base, err
		}
		*id.dst = s
	}

	mediumNode, _ := fields.get("medium")
	medium, err := str(mediumNode, "base.medium")
	if err != nil {
		return base, err
	}
	if !Medium(medium).Valid() {
		return base, violation(mediumNode, "base.medium", fmt.Sprintf("%q does not match animation|audio|image|video", medium))
	}
	base.Medium = Medium(medium)

	toolNode, _ := fields.get("tool")
	tool, err := str(toolNode, "base.tool")
	if err != nil {
		return base, err
	}
	if !Tool(tool).Valid() {
		return base, violation(toolNode, "base.tool", fmt.Sprintf("%q does not match ffmpeg|imagemagick", tool))
	}
	base.Tool = Tool(tool)

	flagsNode, _ := fields.get("default_flags")
	groups, err := loadFlagGroups(flagsNode, "base.default_flags")
	if err != nil {
		return base, err
	}
	base.DefaultFlags = groups
	return base, nil
}

func loadFlagGroups(node *yaml.Node, path string) ([]FlagGroup, error) {
	fields, err := mapping(node, path, nil)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, violation(node, path, "at least one default flag group is required")
	}
	groups := make([]FlagGroup, 0, len(fields))
	for _, f := range fields {
		if !namePattern.MatchString(f.key) {
			return nil, violation(f.keyNode, path, fmt.Sprintf("group name %q does not match ^[a-zA-Z0-9-]+$", f.key))
		}
		tokens, err := tokenList(f.value, path+"."+f.key)
		if err != nil {
			return nil, err
		}
		groups = append(groups, FlagGroup{Name: f.key, Flags: tokens})
	}
	return groups, nil
}

func loadVariation(node *yaml.Node) ([]Axis, error) {
	const path = "variation"
	fields, err := mapping(node, path, nil)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, violation(node, path, "at least one variation axis is required")
	}
	axes := make([]Axis, 0, len(fields))
	for _, f := range fields {
		if !namePattern.MatchString(f.key) {
			return nil, violation(f.keyNode, path, fmt.Sprintf("axis name %q does not match ^[a-zA-Z0-9-]+$", f.key))
		}
		axisPath := path + "." + f.key
		seq := resolve(f.value)
		if seq.Kind != yaml.SequenceNode {
			return nil, violation(seq, axisPath, "must be an array of flag tuples")
		}
		if len(seq.Content) == 0 {
			return nil, violation(seq, axisPath, "must contain at least one flag tuple")
		}
		tuples := make([][]string, 0, len(seq.Content))
		for i, item := range seq.Content {
			tokens, err := tokenList(item, fmt.Sprintf("%s[%d]", axisPath, i))
			if err != nil {
				return nil, err
			}
			tuples = append(tuples, tokens)
		}
		axes = append(axes, Axis{Name: f.key, Tuples: tuples})
	}
	return axes, nil
}

func tokenList(node *yaml.Node, path string) ([]string, error) {
	seq := resolve(node)
	if seq.Kind != yaml.SequenceNode {
		return nil, violation(seq, path, "must be an array of flag tokens")
	}
	if len(seq.Content) == 0 {
		return nil, violation(seq, path, "must contain at least one flag token")
	}
	tokens := make([]string, 0, len(seq.Content))
	for i, item := range seq.Content {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		token, err := str(item, itemPath)
		if err != nil {
			return nil, err
		}
		if token == "" {
			return nil, violation(item, itemPath, "flag token must not be empty")
		}
		if strings.IndexFunc(token, isSpace) >= 0 {
			return nil, violation(item, itemPath, fmt.Sprintf("flag token %q must not contain whitespace", token))
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// isSpace matches the characters of a regular expression \s class, which
// includes the byte order mark.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func identifier(node *yaml.Node, path string) (string, error) {
	value, err := str(node, path)
	if err != nil {
		return "", err
	}
	if !namePattern.MatchString(value) {
		return "", violation(node, path, fmt.Sprintf("%q does not match ^[a-zA-Z0-9-]+$", value))
	}
	return value, nil
}

func str(node *yaml.Node, path string) (string, error) {
	n := resolve(node)
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", violation(n, path, "must be a string")
	}
	return n.Value, nil
}

type field struct {
	key     string
	keyNode *yaml.Node
	value   *yaml.Node
}

type fieldList []field

func (l fieldList) get(key string) (*yaml.Node, bool) {
	for _, f := range l {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// mapping returns the entries of a mapping node in declared order. When
// allowed is non-nil any other key is a violation.
func mapping(node *yaml.Node, path string, allowed []string) (fieldList, error) {
	n := resolve(node)
	if n.Kind != yaml.MappingNode {
		return nil, violation(n, path, "must be an object")
	}
	fields := make(fieldList, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode := resolve(n.Content[i])
		if keyNode.Kind != yaml.ScalarNode {
			return nil, violation(keyNode, path, "property names must be strings")
		}
		key := keyNode.Value
		if _, dup := fields.get(key); dup {
			return nil, violation(keyNode, path, fmt.Sprintf("duplicate property %q", key))
		}
		if allowed != nil && !contains(allowed, key) {
			return nil, violation(keyNode, path, fmt.Sprintf("additional property %q is not allowed", key))
		}
		fields = append(fields, field{key: key, keyNode: keyNode, value: n.Content[i+1]})
	}
	return fields, nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node == nil {
		return &yaml.Node{}
	}
	return node
}

func violation(node *yaml.Node, path, reason string) *SchemaViolation {
	v := &SchemaViolation{Path: path, Reason: reason}
	if node != nil {
		v.Line = node.Line
	}
	return v
}

func contains(values []string, needle string) bool {
	for _, v := range values {
		if v == needle {
			return true
		}
	}
	return false
}
