package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/tilawa/internal/gate"
)

var (
	ErrAccessDenied = errors.New("access denied")
	ErrNoNext       = errors.New("already at the last verse")
	ErrNoPrevious   = errors.New("already at the first verse")
	ErrNotLoaded    = errors.New("no verse loaded")
)

// DeniedError reports a forward move refused by the access gate.
type DeniedError struct {
	Redirect gate.Redirect
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("verse %d requires sign-in", e.Redirect.ItemNumber)
}

// Is matches ErrAccessDenied.
func (e *DeniedError) Is(target error) bool { return target == ErrAccessDenied }

// Play starts or resumes the current verse, loading it first if needed.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.items) == 0 {
		return ErrNoItems
	}
	if s.switching {
		s.latest.Resume = true
		return nil
	}
	number := s.items[s.current].Number
	if s.loadedURL == "" || s.loadedNumber != number {
		return s.requestSwitchLocked(number, true, false)
	}
	if s.state == StatePlaying {
		return nil
	}
	if err := s.primary.Play(); err != nil {
		return err
	}
	s.setStateLocked(StatePlaying)
	return nil
}

// Pause pauses playback. During a switch it clears the play intent so the
// incoming verse stays paused.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.switching {
		s.latest.Resume = false
		return
	}
	if s.state != StatePlaying {
		return
	}
	s.primary.Pause()
	s.setStateLocked(StatePaused)
}

// Toggle flips the play intent and reports whether playback is now wanted.
func (s *Session) Toggle() (bool, error) {
	s.mu.Lock()
	playing := s.state == StatePlaying || (s.switching && s.latest.Resume)
	s.mu.Unlock()
	if playing {
		s.Pause()
		return false, nil
	}
	return true, s.Play()
}

// Stop halts playback and rewinds the current verse.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.switching {
		s.latest.Resume = false
	}
	s.stopLocked()
}

// SeekTo moves to an absolute position in the loaded verse.
func (s *Session) SeekTo(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.switching {
		return ErrSwitchPending
	}
	if s.loadedURL == "" {
		return ErrNotLoaded
	}
	pos = min(max(pos, 0), s.primary.Duration())
	return s.primary.Seek(pos)
}

// Seek moves relative to the current position.
func (s *Session) Seek(delta time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.switching {
		return ErrSwitchPending
	}
	if s.loadedURL == "" {
		return ErrNotLoaded
	}
	pos := min(max(s.primary.Position()+delta, 0), s.primary.Duration())
	return s.primary.Seek(pos)
}

// SetVolume sets the volume (0-100) and returns the clamped value.
func (s *Session) SetVolume(v int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = clampVolume(v)
	s.applyOutputAllLocked()
	return s.volume
}

// SetMuted mutes or unmutes output without touching the volume level.
func (s *Session) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
	s.applyOutputAllLocked()
}

// SetSpeed sets the playback rate (0.25-3.0) and returns the clamped value.
func (s *Session) SetSpeed(v float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = clampSpeed(v)
	s.applyOutputAllLocked()
	return s.speed
}

func (s *Session) applyOutputAllLocked() {
	s.applyOutputLocked(s.primary)
	if s.pre != nil {
		s.applyOutputLocked(s.pre.handle)
	}
}

// SetVoice changes the reciter. A loaded or loading verse restarts from
// zero with the new voice, keeping the play intent.
func (s *Session) SetVoice(voice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if voice == s.voice {
		return nil
	}
	s.voice = voice
	if s.pre != nil {
		s.pre.abandon()
	}
	if len(s.items) == 0 || (s.loadedURL == "" && !s.switching) {
		return nil
	}
	err := s.requestSwitchLocked(s.items[s.current].Number, false, false)
	if errors.Is(err, ErrSwitchPending) {
		return nil
	}
	return err
}

// Voice returns the current reciter.
func (s *Session) Voice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// Next switches to the following verse after consulting the access gate.
// A denial stops playback, starts the identity handoff and returns a
// *DeniedError.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.current+1 >= len(s.items) {
		return ErrNoNext
	}
	return s.advanceLocked(s.items[s.current+1].Number)
}

// Previous switches to the preceding verse. Moving back is never gated.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.current <= 0 || len(s.items) == 0 {
		return ErrNoPrevious
	}
	return s.requestSwitchLocked(s.items[s.current-1].Number, false, false)
}

// JumpTo switches to the verse with the given number. Forward jumps are gated.
func (s *Session) JumpTo(number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	idx := s.indexOf(number)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownItem, number)
	}
	if idx > s.current {
		return s.advanceLocked(number)
	}
	return s.requestSwitchLocked(number, false, false)
}

func (s *Session) advanceLocked(number int) error {
	if d := s.canAdvanceLocked(number); !d.Allowed {
		s.denyLocked(*d.Redirect)
		return &DeniedError{Redirect: *d.Redirect}
	}
	return s.requestSwitchLocked(number, false, false)
}

// Retry reloads the current verse after a terminal failure, keeping the
// play intent of the failed request.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateErrored || len(s.items) == 0 {
		return nil
	}
	return s.requestSwitchLocked(s.items[s.current].Number, s.latest.Resume, false)
}
