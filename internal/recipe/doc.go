// Package recipe loads, validates, and expands corpus recipes.
//
// A recipe pairs a base target (codec, container, library, medium, tool and
// default flag groups) with named variation axes. Load validates a parsed
// YAML/JSON document against the recipe schema and reports the first problem
// as a SchemaViolation carrying the offending field path. Expand enumerates
// the cross product of all axes as concrete Invocations, lazily and in a
// fixed order; ExpandAxes walks one axis at a time instead.
//
// Documents are decoded into yaml.Node trees rather than Go maps so the
// declared order of default flag groups and variation axes is preserved all
// the way into the generated command lines.
//
// Nothing in this package performs I/O beyond reading recipe files and the
// embedded built-in catalog; expansion is a pure value transformation and is
// safe to run concurrently on distinct or shared recipes.
package recipe
