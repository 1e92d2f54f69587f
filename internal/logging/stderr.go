//go:build !windows

package logging

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
)

// StderrCapture redirects file descriptor 2 into the log. Audio backends
// write there directly, which would corrupt the terminal UI.
type StderrCapture struct {
	orig  int
	read  *os.File
	write *os.File
	done  chan struct{}
}

// CaptureStderr starts forwarding stderr lines to logger at warn level.
// Call it before the audio device is opened.
func CaptureStderr(logger zerolog.Logger) (*StderrCapture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &StderrCapture{orig: orig, read: r, write: w, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				logger.Warn().Str("source", "stderr").Msg(line)
			}
		}
	}()
	return c, nil
}

// WriteOriginal writes to the real stderr, bypassing capture.
func (c *StderrCapture) WriteOriginal(msg string) {
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Stop restores the original stderr.
func (c *StderrCapture) Stop() {
	_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	c.write.Close()
	<-c.done
	c.read.Close()
}
