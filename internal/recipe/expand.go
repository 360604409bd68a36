package recipe

import (
	"fmt"
	"iter"
	"math"
	"strings"
)

// Mode selects how variation axes are combined.
type Mode string

const (
	// ModeProduct emits one invocation per element of the cross product of
	// all axes.
	ModeProduct Mode = "product"
	// ModeAxis walks one axis at a time, replacing the default flag group that
	// shares the axis name.
	ModeAxis Mode = "axis"
)

// ParseMode converts a configuration value into a Mode. Empty means product.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeProduct:
		return ModeProduct, nil
	case ModeAxis:
		return ModeAxis, nil
	default:
		return "", fmt.Errorf("unsupported expansion mode %q (expected product or axis)", value)
	}
}

// Expand returns the cross product of all variation axes as a lazy sequence.
// Every invocation starts with the tool identifier followed by all default
// flag groups in declared order; one tuple per axis follows, axes in declared
// order with the last axis varying fastest. The sequence can be ranged over
// any number of times and always yields the same invocations.
func (r *Recipe) Expand() iter.Seq[Invocation] {
	return func(yield func(Invocation) bool) {
		if len(r.Variation) == 0 {
			return
		}
		for _, axis := range r.Variation {
			if len(axis.Tuples) == 0 {
				return
			}
		}
		prefix := r.prefix("")
		idx := make([]int, len(r.Variation))
		for {
			if !yield(r.product(prefix, idx)) {
				return
			}
			k := len(idx) - 1
			for ; k >= 0; k-- {
				idx[k]++
				if idx[k] < len(r.Variation[k].Tuples) {
					break
				}
				idx[k] = 0
			}
			if k < 0 {
				return
			}
		}
	}
}

// ExpandAxes returns one invocation per tuple per axis. For each axis the
// default flag group with the same name, if any, is left out so the tuple
// replaces it.
func (r *Recipe) ExpandAxes() iter.Seq[Invocation] {
	return func(yield func(Invocation) bool) {
		for _, axis := range r.Variation {
			prefix := r.prefix(axis.Name)
			for i, tuple := range axis.Tuples {
				tokens := make([]string, 0, len(prefix)+len(tuple))
				tokens = append(tokens, prefix...)
				tokens = append(tokens, tuple...)
				inv := Invocation{
					Tokens:     tokens,
					Selections: []Selection{{Axis: axis.Name, Index: i}},
				}
				if !yield(inv) {
					return
				}
			}
		}
	}
}

// Invocations dispatches to Expand or ExpandAxes.
func (r *Recipe) Invocations(mode Mode) iter.Seq[Invocation] {
	if mode == ModeAxis {
		return r.ExpandAxes()
	}
	return r.Expand()
}

// Count returns the number of invocations Expand yields, saturating at
// math.MaxInt.
func (r *Recipe) Count() int {
	if len(r.Variation) == 0 {
		return 0
	}
	total := 1
	for _, axis := range r.Variation {
		n := len(axis.Tuples)
		if n == 0 {
			return 0
		}
		if total > math.MaxInt/n {
			return math.MaxInt
		}
		total *= n
	}
	return total
}

// AxisCount returns the number of invocations ExpandAxes yields.
func (r *Recipe) AxisCount() int {
	total := 0
	for _, axis := range r.Variation {
		total += len(axis.Tuples)
	}
	return total
}

// Size returns the invocation count for the given mode.
func (r *Recipe) Size(mode Mode) int {
	if mode == ModeAxis {
		return r.AxisCount()
	}
	return r.Count()
}

// CheckSize returns an *ExpansionOverflow when the expansion for mode would
// exceed limit. A limit <= 0 disables the check.
func (r *Recipe) CheckSize(mode Mode, limit int) error {
	if limit <= 0 {
		return nil
	}
	if size := r.Size(mode); size > limit {
		return &ExpansionOverflow{Source: r.Name(), Size: size, Limit: limit}
	}
	return nil
}

// prefix builds the tool identifier plus default flags, skipping the group
// named skip.
func (r *Recipe) prefix(skip string) []string {
	n := 1
	for _, g := range r.Base.DefaultFlags {
		n += len(g.Flags)
	}
	tokens := make([]string, 0, n)
	tokens = append(tokens, string(r.Base.Tool))
	for _, g := range r.Base.DefaultFlags {
		if skip != "" && g.Name == skip {
			continue
		}
		tokens = append(tokens, g.Flags...)
	}
	return tokens
}

func (r *Recipe) product(prefix []string, idx []int) Invocation {
	n := len(prefix)
	for k, i := range idx {
		n += len(r.Variation[k].Tuples[i])
	}
	tokens := make([]string, 0, n)
	tokens = append(tokens, prefix...)
	selections := make([]Selection, len(idx))
	for k, i := range idx {
		axis := r.Variation[k]
		tokens = append(tokens, axis.Tuples[i]...)
		selections[k] = Selection{Axis: axis.Name, Index: i}
	}
	return Invocation{Tokens: tokens, Selections: selections}
}
