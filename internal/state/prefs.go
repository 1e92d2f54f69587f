package state

import (
	"strconv"
)

// Preference keys.
const (
	KeyVoice  = "voice"
	KeySpeed  = "speed"
	KeyMode   = "mode"
	KeyVolume = "volume"
	KeyMuted  = "muted"
)

// Prefs are the remembered playback choices.
type Prefs struct {
	Voice  string
	Speed  float64
	Mode   string
	Volume int
	Muted  bool
}

func (s *Store) SaveVoice(voice string) { s.Persist(KeyVoice, voice) }

func (s *Store) SaveSpeed(speed float64) {
	s.Persist(KeySpeed, strconv.FormatFloat(speed, 'f', -1, 64))
}

func (s *Store) SaveMode(mode string) { s.Persist(KeyMode, mode) }

func (s *Store) SaveVolume(volume int) { s.Persist(KeyVolume, strconv.Itoa(volume)) }

func (s *Store) SaveMuted(muted bool) { s.Persist(KeyMuted, strconv.FormatBool(muted)) }

// LoadPrefs overlays the stored preferences on defaults. Values that no
// longer parse are ignored.
func (s *Store) LoadPrefs(defaults Prefs) (Prefs, error) {
	return loadPrefs(s, defaults)
}

type loader interface {
	Load(key string) (string, bool, error)
}

func loadPrefs(l loader, p Prefs) (Prefs, error) {
	get := func(key string) (string, bool, error) {
		v, ok, err := l.Load(key)
		if err != nil || !ok || v == "" {
			return "", false, err
		}
		return v, true, nil
	}

	if v, ok, err := get(KeyVoice); err != nil {
		return p, err
	} else if ok {
		p.Voice = v
	}
	if v, ok, err := get(KeySpeed); err != nil {
		return p, err
	} else if ok {
		if f, perr := strconv.ParseFloat(v, 64); perr == nil {
			p.Speed = f
		}
	}
	if v, ok, err := get(KeyMode); err != nil {
		return p, err
	} else if ok {
		p.Mode = v
	}
	if v, ok, err := get(KeyVolume); err != nil {
		return p, err
	} else if ok {
		if n, perr := strconv.Atoi(v); perr == nil {
			p.Volume = n
		}
	}
	if v, ok, err := get(KeyMuted); err != nil {
		return p, err
	} else if ok {
		if b, perr := strconv.ParseBool(v); perr == nil {
			p.Muted = b
		}
	}
	return p, nil
}
