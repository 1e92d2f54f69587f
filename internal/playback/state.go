// internal/playback/state.go
package playback

import (
	"fmt"
	"strings"
)

// LoadState is the state of the primary media handle as seen by the
// coordinator. Only the coordinator changes it.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
	StatePlaying
	StatePaused
	StateErrored
)

// String returns the state name.
func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a source is attached and playing or paused.
func (s LoadState) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Mode decides what happens when an item ends on its own.
type Mode int

const (
	ModeSingle Mode = iota
	ModeContinuous
	ModeRepeat
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "Single"
	case ModeContinuous:
		return "Continuous"
	case ModeRepeat:
		return "Repeat"
	default:
		return "Unknown"
	}
}

// Next returns the mode that follows m when cycling.
func (m Mode) Next() Mode {
	switch m {
	case ModeSingle:
		return ModeContinuous
	case ModeContinuous:
		return ModeRepeat
	default:
		return ModeSingle
	}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return ModeSingle, nil
	case "continuous":
		return ModeContinuous, nil
	case "repeat":
		return ModeRepeat, nil
	default:
		return ModeSingle, fmt.Errorf("unknown playback mode %q", s)
	}
}
