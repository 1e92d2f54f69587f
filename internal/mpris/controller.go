package mpris

import (
	"time"

	"github.com/llehouerou/tilawa/internal/playback"
)

// Controller is the transport surface MPRIS drives. *transport.Transport
// implements it.
type Controller interface {
	Play() error
	Pause()
	Stop()
	TogglePlayPause() (bool, error)
	SkipNext() error
	SkipPrevious() error
	SeekTo(pos time.Duration) error
	Seek(delta time.Duration) error
	SetVolume(v int) int
	SetSpeed(v float64) float64
	SetMode(m playback.Mode)
	Snapshot() playback.Snapshot
	Items() []playback.Item
}
