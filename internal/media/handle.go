// Package media abstracts the single audio element the playback core drives.
package media

import (
	"errors"
	"time"
)

var (
	// ErrAborted is reported when a newer Load replaced an in-flight one.
	ErrAborted = errors.New("media: load aborted")
	// ErrNotReady is returned by Play before the source reported Ready.
	ErrNotReady = errors.New("media: source not ready")
	// ErrNoSource is returned when an operation needs an attached source.
	ErrNoSource = errors.New("media: no source attached")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("media: handle closed")
)

// EventKind enumerates handle lifecycle events.
type EventKind int

const (
	EventReady EventKind = iota
	EventError
	EventEnded
	EventWaiting
	EventAborted
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "Ready"
	case EventError:
		return "Error"
	case EventEnded:
		return "Ended"
	case EventWaiting:
		return "Waiting"
	case EventAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Event is emitted by a handle. Source identifies the load it belongs to.
type Event struct {
	Kind   EventKind
	Source string
	Err    error
}

// Handle is a streaming audio element.
//
// Load and Reload return once the fetch has started; readiness and failure
// are reported asynchronously on Events. A Load issued while another is in
// flight supersedes it and the older load reports EventAborted.
type Handle interface {
	Load(url string) error
	Reload() error
	// Adopt takes over the source another handle has already fetched.
	// The other handle is left without a source.
	Adopt(from Handle) error
	Play() error
	Pause()
	Stop()
	Seek(pos time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	SetVolume(level float64)
	SetMuted(muted bool)
	SetSpeed(ratio float64)
	Source() string
	Playing() bool
	Events() <-chan Event
	Close() error
}

const eventBufferSize = 64
