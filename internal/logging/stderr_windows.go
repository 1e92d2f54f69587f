//go:build windows

package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// StderrCapture is a no-op on Windows, where audio backends keep quiet.
type StderrCapture struct{}

// CaptureStderr is a no-op on Windows.
func CaptureStderr(zerolog.Logger) (*StderrCapture, error) {
	return &StderrCapture{}, nil
}

// WriteOriginal writes to stderr.
func (*StderrCapture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop is a no-op on Windows.
func (*StderrCapture) Stop() {}
