// Package diag provides zero-allocation, cold-path-only logging.
//
// It exists so that the producer and consumer hot loops never carry a
// logging dependency into the fast path. Every function here writes
// directly to stderr/stdout with a single concatenated string — no
// fmt.Sprintf, no interfaces, no buffering.
//
// Never call these from the ring push/pop or record parse paths.
package diag

import (
	"os"
	"time"
)

// Error logs a failure with its wrapped error text. Used on startup
// failures and on the fatal paths described in the error taxonomy
// (io_error, bad_magic, bad_version, crc_mismatch, watch_error).
func Error(prefix string, err error) {
	if err != nil {
		os.Stderr.WriteString(prefix + ": " + err.Error() + "\n")
		return
	}
	os.Stderr.WriteString(prefix + "\n")
}

// Info logs a cold-path informational line: phase transitions, signal
// receipt, periodic reporter output.
func Info(prefix, message string) {
	os.Stdout.WriteString(prefix + ": " + message + "\n")
}

// Timestamped logs a message prefixed with a wall-clock time, used by the
// monitor goroutine's periodic reporting lines.
func Timestamped(prefix, message string) {
	os.Stdout.WriteString(time.Now().Format(time.RFC3339) + " " + prefix + ": " + message + "\n")
}
