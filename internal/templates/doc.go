// Package templates creates the seed media files that recipes transform.
//
// Every template is produced by ffmpeg from a lavfi source: audio templates
// are 16-bit PCM WAV files, image templates single-frame PNGs, and
// video/animation templates H.264 MP4 files.
package templates
