package playback

// Recorder receives coordinator counters. The metrics package implements it.
type Recorder interface {
	SwitchRequested()
	SwitchCompleted(preloaded bool)
	SwitchStale()
	SwitchFailed(reason string)
	LoadRetry(attempt int)
	Redirect()
	Preload()
}

// Failure reasons passed to SwitchFailed.
const (
	FailureExhausted = "exhausted"
	FailureTimeout   = "timeout"
	FailureResolve   = "resolve"
	FailurePlay      = "play"
)

type nopRecorder struct{}

func (nopRecorder) SwitchRequested() {}
func (nopRecorder) SwitchCompleted(bool) {}
func (nopRecorder) SwitchStale() {}
func (nopRecorder) SwitchFailed(string) {}
func (nopRecorder) LoadRetry(int) {}
func (nopRecorder) Redirect() {}
func (nopRecorder) Preload() {}
