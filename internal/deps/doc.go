// Package deps discovers the external media tools used for generation and
// reports whether they can be executed.
package deps
