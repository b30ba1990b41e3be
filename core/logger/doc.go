// Package logger configures the shell's structured diagnostic log.
//
// The log is off unless a path is configured. The terminal belongs to the
// user and child processes, so only --verbose runs point it at stderr.
package logger
