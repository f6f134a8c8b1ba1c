// Package logs reads the photoreel log file for `photoreel logs`.
//
// Last returns the trailing lines with bounded memory; Follow polls for lines
// appended after an offset until its context is cancelled.
package logs
