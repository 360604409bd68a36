// Package dedupe removes byte-identical files from a generated corpus.
//
// Files are walked in sorted name order and grouped by size, then by SHA-256
// digest, and finally confirmed with a byte-for-byte comparison. The first
// file of each identical group is kept; later copies are deleted.
package dedupe
