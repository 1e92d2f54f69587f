// Package transport turns user intent into playback session calls.
//
// Every operation goes through the session, which owns the media handle.
// The transport adds keyboard dispatch and remembers the caller's voice,
// speed, mode and volume through a Prefs store.
package transport

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tilawa/internal/playback"
)

const (
	VolumeStep = 5
	SpeedStep  = 0.25
	SeekStep   = 5 * time.Second
)

// ErrNoVoices is returned by NextVoice when no reciters are configured.
var ErrNoVoices = errors.New("no reciters configured")

// Player is the playback surface the transport drives.
type Player interface {
	Play() error
	Pause()
	Stop()
	Toggle() (bool, error)
	Next() error
	Previous() error
	JumpTo(number int) error
	SeekTo(pos time.Duration) error
	Seek(delta time.Duration) error
	SetVolume(v int) int
	SetSpeed(v float64) float64
	SetMuted(muted bool)
	SetMode(m playback.Mode)
	CycleMode() playback.Mode
	SetVoice(voice string) error
	Retry() error
	Snapshot() playback.Snapshot
	Items() []playback.Item
}

// Voices cycles through configured reciters.
type Voices interface {
	NextVoice(current string) string
}

// Prefs remembers the caller's choices across sessions.
type Prefs interface {
	SaveVoice(voice string)
	SaveSpeed(speed float64)
	SaveMode(mode string)
	SaveVolume(volume int)
	SaveMuted(muted bool)
}

type nopPrefs struct{}

func (nopPrefs) SaveVoice(string) {}
func (nopPrefs) SaveSpeed(float64) {}
func (nopPrefs) SaveMode(string) {}
func (nopPrefs) SaveVolume(int) {}
func (nopPrefs) SaveMuted(bool) {}

// Transport exposes play/pause/seek/volume/speed/skip and key dispatch.
type Transport struct {
	player Player
	voices Voices
	prefs  Prefs
	keys   *Resolver
	log    zerolog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithVoices enables reciter cycling.
func WithVoices(v Voices) Option { return func(t *Transport) { t.voices = v } }

// WithPrefs persists user choices.
func WithPrefs(p Prefs) Option { return func(t *Transport) { t.prefs = p } }

// WithBindings replaces the default key bindings.
func WithBindings(b []Binding) Option { return func(t *Transport) { t.keys = NewResolver(b) } }

// WithLogger sets the transport logger.
func WithLogger(l zerolog.Logger) Option { return func(t *Transport) { t.log = l } }

// New creates a transport for p.
func New(p Player, opts ...Option) *Transport {
	t := &Transport{
		player: p,
		prefs:  nopPrefs{},
		keys:   NewResolver(DefaultBindings),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Keys returns the active key resolver.
func (t *Transport) Keys() *Resolver { return t.keys }

// Snapshot returns the session state.
func (t *Transport) Snapshot() playback.Snapshot { return t.player.Snapshot() }

// Items returns the verses of the current surah.
func (t *Transport) Items() []playback.Item { return t.player.Items() }

// Play starts or resumes playback.
func (t *Transport) Play() error { return t.player.Play() }

// Pause pauses playback.
func (t *Transport) Pause() { t.player.Pause() }

// Stop halts playback and rewinds the current verse.
func (t *Transport) Stop() { t.player.Stop() }

// TogglePlayPause flips playback and reports whether it is now wanted.
func (t *Transport) TogglePlayPause() (bool, error) {
	return t.player.Toggle()
}

// SkipNext moves to the next verse. It returns playback.ErrSwitchPending
// while a switch is in flight and an error matching
// playback.ErrAccessDenied when the gate refuses.
func (t *Transport) SkipNext() error {
	return t.player.Next()
}

// SkipPrevious moves to the previous verse.
func (t *Transport) SkipPrevious() error {
	return t.player.Previous()
}

// JumpTo moves to a verse by number.
func (t *Transport) JumpTo(number int) error {
	return t.player.JumpTo(number)
}

// SeekTo moves to an absolute position in the current verse.
func (t *Transport) SeekTo(pos time.Duration) error {
	return t.player.SeekTo(pos)
}

// Seek moves relative to the current position.
func (t *Transport) Seek(delta time.Duration) error {
	return t.player.Seek(delta)
}

// SetVolume sets and remembers the volume; returns the clamped value.
func (t *Transport) SetVolume(v int) int {
	v = t.player.SetVolume(v)
	t.prefs.SaveVolume(v)
	return v
}

// AdjustVolume changes the volume by delta.
func (t *Transport) AdjustVolume(delta int) int {
	return t.SetVolume(t.player.Snapshot().Volume + delta)
}

// ToggleMute flips mute and returns the new state.
func (t *Transport) ToggleMute() bool {
	muted := !t.player.Snapshot().Muted
	t.player.SetMuted(muted)
	t.prefs.SaveMuted(muted)
	return muted
}

// SetSpeed sets and remembers the playback rate; returns the clamped value.
func (t *Transport) SetSpeed(v float64) float64 {
	v = t.player.SetSpeed(v)
	t.prefs.SaveSpeed(v)
	return v
}

// AdjustSpeed changes the playback rate by delta.
func (t *Transport) AdjustSpeed(delta float64) float64 {
	return t.SetSpeed(t.player.Snapshot().Speed + delta)
}

// SetMode sets and remembers the playback mode.
func (t *Transport) SetMode(m playback.Mode) {
	t.player.SetMode(m)
	t.prefs.SaveMode(m.String())
}

// CycleMode moves to the next mode and remembers it.
func (t *Transport) CycleMode() playback.Mode {
	m := t.player.CycleMode()
	t.prefs.SaveMode(m.String())
	return m
}

// SetVoice changes and remembers the reciter.
func (t *Transport) SetVoice(voice string) error {
	if err := t.player.SetVoice(voice); err != nil {
		return err
	}
	t.prefs.SaveVoice(voice)
	return nil
}

// NextVoice switches to the following configured reciter.
func (t *Transport) NextVoice() (string, error) {
	if t.voices == nil {
		return "", ErrNoVoices
	}
	current := t.player.Snapshot().Voice
	next := t.voices.NextVoice(current)
	if next == current {
		return current, nil
	}
	return next, t.SetVoice(next)
}

// Retry is the "try again" affordance after a failed load.
func (t *Transport) Retry() error {
	return t.player.Retry()
}

// HandleKey resolves and dispatches a key press. Keys with a modifier held
// or typed inside a text input are ignored and return an empty action.
func (t *Transport) HandleKey(ev KeyEvent) (Action, error) {
	if ev.InTextInput || ev.Modified() {
		return "", nil
	}
	action := t.keys.Resolve(ev.Key)
	if action == "" {
		return "", nil
	}
	err := t.Dispatch(action)
	if err != nil {
		t.log.Debug().Err(err).Str("action", string(action)).Msg("transport action failed")
	}
	return action, err
}

// Dispatch runs an action.
func (t *Transport) Dispatch(action Action) error {
	switch action {
	case ActionPlayPause:
		_, err := t.TogglePlayPause()
		return err
	case ActionNext:
		return t.SkipNext()
	case ActionPrevious:
		return t.SkipPrevious()
	case ActionVolumeUp:
		t.AdjustVolume(VolumeStep)
	case ActionVolumeDown:
		t.AdjustVolume(-VolumeStep)
	case ActionMute:
		t.ToggleMute()
	case ActionSpeedDown:
		t.AdjustSpeed(-SpeedStep)
	case ActionSpeedUp:
		t.AdjustSpeed(SpeedStep)
	case ActionCycleMode:
		t.CycleMode()
	case ActionNextVoice:
		_, err := t.NextVoice()
		return err
	case ActionSeekStart:
		return t.SeekTo(0)
	case ActionSeekForward:
		return t.Seek(SeekStep)
	case ActionSeekBack:
		return t.Seek(-SeekStep)
	case ActionRetry:
		return t.Retry()
	}
	return nil
}
