// Package preflight runs environment checks before generation: directory
// permissions for output, state, and logs, plus availability of the configured
// media tools.
package preflight
