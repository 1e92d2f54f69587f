package state

import "github.com/llehouerou/tilawa/internal/gate"

// Interface is the persistence surface the host depends on.
type Interface interface {
	Persist(key, value string)
	Load(key string) (string, bool, error)
	LoadPrefs(defaults Prefs) (Prefs, error)
	SaveVoice(voice string)
	SaveSpeed(speed float64)
	SaveMode(mode string)
	SaveVolume(volume int)
	SaveMuted(muted bool)
	SaveResume(r gate.Redirect) error
	TakeResume() (*gate.Redirect, error)
	Close() error
}

// Verify Store implements Interface at compile time.
var _ Interface = (*Store)(nil)
