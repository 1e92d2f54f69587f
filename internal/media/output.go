package media

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const speakerRate = beep.SampleRate(44100)

// output is where a Stream sends its chain. lock guards every field of a
// chain that has been handed to play.
type output interface {
	init() error
	play(beep.Streamer)
	lock()
	unlock()
	clear()
}

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
)

// speakerOutput is the process-wide beep speaker.
type speakerOutput struct{}

func (speakerOutput) init() error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(speakerRate, speakerRate.N(time.Second/10)); err != nil {
		return err
	}
	speakerInitialized = true
	return nil
}

func (speakerOutput) play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) lock()                { speaker.Lock() }
func (speakerOutput) unlock()              { speaker.Unlock() }
func (speakerOutput) clear()               { speaker.Clear() }

// withOutput replaces the speaker, for tests.
func withOutput(o output) StreamOption {
	return func(s *Stream) { s.out = o }
}
