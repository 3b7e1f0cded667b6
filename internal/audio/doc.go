// Package audio implements the streaming WAV to mono conversion core.
// It probes input files for their native PCM format, negotiates a float
// processing format and a fixed mono 16-bit output format, and runs the
// chunked read/down-mix/quantize/write loop with fractional progress reporting.
package audio
