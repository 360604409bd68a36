// Package toolexec runs external media tools (ffmpeg, ImageMagick) on behalf
// of the generator.
//
// Executor abstracts process execution so tests can substitute stubs. Runner
// layers a per-command timeout and a tool log on top: combined stdout/stderr
// is written to a log file that is removed when the command succeeds and kept
// for inspection when it fails. Failures surface as *ToolFailure.
package toolexec
