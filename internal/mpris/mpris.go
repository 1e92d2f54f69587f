//go:build linux

package mpris

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/tilawa/internal/playback"
)

// Adapter connects the transport to MPRIS over D-Bus so media keys and
// desktop widgets can drive recitation.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(ctrl Controller, surahName string) (*Adapter, error) {
	a := &Adapter{}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{ctrl: ctrl, surahName: surahName}

	a.server = server.NewServer("tilawa", rootAdapter, playerAdapter)

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Tilawa", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and LoopStatus.
type playerAdapter struct {
	ctrl      Controller
	surahName string
}

func (p *playerAdapter) Next() error {
	return p.ctrl.SkipNext()
}

func (p *playerAdapter) Previous() error {
	return p.ctrl.SkipPrevious()
}

func (p *playerAdapter) Pause() error {
	p.ctrl.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	_, err := p.ctrl.TogglePlayPause()
	return err
}

func (p *playerAdapter) Stop() error {
	p.ctrl.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	return p.ctrl.Play()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.ctrl.Seek(time.Duration(offset) * time.Microsecond)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.ctrl.SeekTo(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.ctrl.Snapshot()), nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.ctrl.Snapshot().Speed, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	p.ctrl.SetSpeed(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap := p.ctrl.Snapshot()
	if snap.CurrentNumber == 0 {
		return types.Metadata{}, nil
	}
	return metadata(snap, p.surahName), nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return float64(p.ctrl.Snapshot().Volume) / 100, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.ctrl.SetVolume(int(v*100 + 0.5))
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.ctrl.Snapshot().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return playback.MinSpeed, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return playback.MaxSpeed, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.ctrl.Snapshot().CurrentIndex+1 < len(p.ctrl.Items()), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.ctrl.Snapshot().CurrentIndex > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return len(p.ctrl.Items()) > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	return loopStatus(p.ctrl.Snapshot().Mode), nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	p.ctrl.SetMode(modeFor(status))
	return nil
}

func playbackStatus(snap playback.Snapshot) types.PlaybackStatus {
	switch snap.LoadState {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying
	case playback.StatePaused, playback.StateLoading, playback.StateReady:
		return types.PlaybackStatusPaused
	case playback.StateIdle, playback.StateErrored:
		return types.PlaybackStatusStopped
	}
	return types.PlaybackStatusStopped
}

func loopStatus(m playback.Mode) types.LoopStatus {
	switch m {
	case playback.ModeRepeat:
		return types.LoopStatusTrack
	case playback.ModeContinuous:
		return types.LoopStatusPlaylist
	case playback.ModeSingle:
		return types.LoopStatusNone
	}
	return types.LoopStatusNone
}

func modeFor(status types.LoopStatus) playback.Mode {
	switch status {
	case types.LoopStatusTrack:
		return playback.ModeRepeat
	case types.LoopStatusPlaylist:
		return playback.ModeContinuous
	case types.LoopStatusNone:
		return playback.ModeSingle
	}
	return playback.ModeSingle
}

func metadata(snap playback.Snapshot, surahName string) types.Metadata {
	title := fmt.Sprintf("%d:%d", snap.CollectionID, snap.CurrentNumber)
	if surahName != "" {
		title = fmt.Sprintf("%s %s", surahName, title)
	}
	return types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(snap.CollectionID, snap.CurrentNumber)),
		Length:      types.Microseconds(snap.Duration.Microseconds()),
		Title:       title,
		Artist:      []string{snap.Voice},
		Album:       surahName,
		TrackNumber: snap.CurrentNumber,
	}
}

func formatTrackID(surah, verse int) string {
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%03d%03d", surah, verse)
}
