package recipe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaViolation matches every *SchemaViolation via errors.Is.
var ErrSchemaViolation = errors.New("recipe schema violation")

// SchemaViolation reports a recipe document that does not satisfy the recipe
// schema. Path uses dotted keys and [n] indexes, "$" for the document root.
type SchemaViolation struct {
	Source string
	Path   string
	Line   int
	Reason string
}

func (e *SchemaViolation) Error() string {
	var b strings.Builder
	b.WriteString("invalid recipe")
	if e.Source != "" {
		fmt.Fprintf(&b, " %q", e.Source)
	}
	b.WriteString(": ")
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	return b.String()
}

// Is lets errors.Is(err, ErrSchemaViolation) match.
func (e *SchemaViolation) Is(target error) bool {
	return target == ErrSchemaViolation
}

// ErrorKind classifies the failure for callers that map errors to outcomes.
func (e *SchemaViolation) ErrorKind() string { return "validation" }

// ExpansionOverflow reports a recipe whose expansion exceeds the configured
// ceiling.
type ExpansionOverflow struct {
	Source string
	Size   int
	Limit  int
}

func (e *ExpansionOverflow) Error() string {
	name := e.Source
	if name == "" {
		name = "recipe"
	}
	return fmt.Sprintf("%s expands to %d invocations, exceeding the limit of %d", name, e.Size, e.Limit)
}

// ErrorKind classifies the failure for callers that map errors to outcomes.
func (e *ExpansionOverflow) ErrorKind() string { return "configuration" }
