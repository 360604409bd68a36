// Package generator turns a recipe and a set of templates into corpus files.
//
// Each recipe invocation is applied to every template. Jobs are produced in a
// fixed order (templates outer, invocations inner) and executed by a bounded
// worker group; results are reported to the caller in production order even
// when workers finish out of order. The first tool failure cancels the
// remaining jobs.
package generator
