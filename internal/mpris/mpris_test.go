//go:build linux

package mpris

import (
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tilawa/internal/playback"
)

type fakeController struct {
	snap   playback.Snapshot
	items  []playback.Item
	calls  []string
	seekTo time.Duration
}

func (f *fakeController) Play() error { f.calls = append(f.calls, "play"); return nil }
func (f *fakeController) Pause()      { f.calls = append(f.calls, "pause") }
func (f *fakeController) Stop()       { f.calls = append(f.calls, "stop") }

func (f *fakeController) TogglePlayPause() (bool, error) {
	f.calls = append(f.calls, "toggle")
	return true, nil
}

func (f *fakeController) SkipNext() error     { f.calls = append(f.calls, "next"); return nil }
func (f *fakeController) SkipPrevious() error { f.calls = append(f.calls, "previous"); return nil }

func (f *fakeController) SeekTo(pos time.Duration) error {
	f.seekTo = pos
	return nil
}

func (f *fakeController) Seek(delta time.Duration) error {
	f.seekTo = f.snap.Position + delta
	return nil
}

func (f *fakeController) SetVolume(v int) int {
	f.snap.Volume = v
	return v
}

func (f *fakeController) SetSpeed(v float64) float64 {
	f.snap.Speed = v
	return v
}

func (f *fakeController) SetMode(m playback.Mode)     { f.snap.Mode = m }
func (f *fakeController) Snapshot() playback.Snapshot { return f.snap }
func (f *fakeController) Items() []playback.Item      { return f.items }

func newFake() *fakeController {
	return &fakeController{
		snap: playback.Snapshot{
			CollectionID:  112,
			CurrentIndex:  1,
			CurrentNumber: 2,
			LoadState:     playback.StatePlaying,
			Voice:         "husary",
			Speed:         1,
			Volume:        60,
			Position:      3 * time.Second,
			Duration:      8 * time.Second,
		},
		items: []playback.Item{{Number: 1}, {Number: 2}, {Number: 3}},
	}
}

func TestPlayerAdapter_Controls(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	require.NoError(t, p.Next())
	require.NoError(t, p.Previous())
	require.NoError(t, p.PlayPause())
	require.NoError(t, p.Pause())
	require.NoError(t, p.Play())
	require.NoError(t, p.Stop())

	assert.Equal(t, []string{"next", "previous", "toggle", "pause", "play", "stop"}, f.calls)
}

func TestPlayerAdapter_Seek(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	require.NoError(t, p.Seek(types.Microseconds(2_000_000)))
	assert.Equal(t, 5*time.Second, f.seekTo)

	require.NoError(t, p.SetPosition("", types.Microseconds(1_500_000)))
	assert.Equal(t, 1500*time.Millisecond, f.seekTo)

	pos, err := p.Position()
	require.NoError(t, err)
	assert.Equal(t, int64(3_000_000), pos)
}

func TestPlayerAdapter_VolumeAndRate(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	v, err := p.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 0.6, v, 0.001)

	require.NoError(t, p.SetVolume(0.35))
	assert.Equal(t, 35, f.snap.Volume)

	require.NoError(t, p.SetRate(1.5))
	rate, err := p.Rate()
	require.NoError(t, err)
	assert.InDelta(t, 1.5, rate, 0.001)

	minRate, _ := p.MinimumRate()
	maxRate, _ := p.MaximumRate()
	assert.InDelta(t, playback.MinSpeed, minRate, 0.001)
	assert.InDelta(t, playback.MaxSpeed, maxRate, 0.001)
}

func TestPlayerAdapter_Navigation(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	next, _ := p.CanGoNext()
	prev, _ := p.CanGoPrevious()
	assert.True(t, next)
	assert.True(t, prev)

	f.snap.CurrentIndex = 2
	next, _ = p.CanGoNext()
	assert.False(t, next)

	f.snap.CurrentIndex = 0
	prev, _ = p.CanGoPrevious()
	assert.False(t, prev)
}

func TestPlaybackStatus(t *testing.T) {
	tests := []struct {
		state playback.LoadState
		want  types.PlaybackStatus
	}{
		{playback.StatePlaying, types.PlaybackStatusPlaying},
		{playback.StatePaused, types.PlaybackStatusPaused},
		{playback.StateLoading, types.PlaybackStatusPaused},
		{playback.StateReady, types.PlaybackStatusPaused},
		{playback.StateIdle, types.PlaybackStatusStopped},
		{playback.StateErrored, types.PlaybackStatusStopped},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, playbackStatus(playback.Snapshot{LoadState: tt.state}))
		})
	}
}

func TestLoopStatus_RoundTripsModes(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	for _, m := range []playback.Mode{playback.ModeSingle, playback.ModeContinuous, playback.ModeRepeat} {
		f.snap.Mode = m
		status, err := p.LoopStatus()
		require.NoError(t, err)
		require.NoError(t, p.SetLoopStatus(status))
		assert.Equal(t, m, f.snap.Mode)
	}
}

func TestMetadata(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f, surahName: "Al-Ikhlaas"}

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Al-Ikhlaas 112:2", meta.Title)
	assert.Equal(t, []string{"husary"}, meta.Artist)
	assert.Equal(t, 2, meta.TrackNumber)
	assert.Equal(t, types.Microseconds(8_000_000), meta.Length)
	assert.Equal(t, "/org/mpris/MediaPlayer2/Track/112002", string(meta.TrackId))

	f.snap.CurrentNumber = 0
	meta, err = p.Metadata()
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
}
