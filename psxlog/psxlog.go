// psxlog.go - thin leveled wrapper over the standard logger

// Package psxlog logs with direct fmt/log calls at the point of interest
// rather than a structured logging dependency, and adds a Verbose gate so
// trace-level output can be silenced without deleting call sites.
package psxlog

import "log"

// Verbose gates Tracef output. Warnf always prints, unconditionally.
var Verbose = false

func Warnf(format string, args ...any) {
	log.Printf("warning: "+format, args...)
}

func Tracef(format string, args ...any) {
	if Verbose {
		log.Printf("trace: "+format, args...)
	}
}
