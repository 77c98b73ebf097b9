// Package joblog is a thin wrapper over the standard log package, mirroring
// the shape of tjper-teleport's internal log helper so call sites read
// joblog.Errorf(...) instead of reaching for the bare log package directly.
package joblog

import (
	"log"
	"os"
)

var logger = log.New(os.Stderr, "", log.LstdFlags)

// Infof logs an informational message.
func Infof(format string, args ...interface{}) {
	logger.Printf("INFO  "+format, args...)
}

// Warnf logs a message about a condition that was handled but noteworthy,
// e.g. a resource-release failure that never changes a job's outcome.
func Warnf(format string, args ...interface{}) {
	logger.Printf("WARN  "+format, args...)
}

// Errorf logs a message about a failure.
func Errorf(format string, args ...interface{}) {
	logger.Printf("ERROR "+format, args...)
}
