// internal/state/mock.go
package state

import (
	"strconv"
	"sync"

	"github.com/llehouerou/tilawa/internal/gate"
)

// Mock is a test double for Store.
type Mock struct {
	mu      sync.Mutex
	values  map[string]string
	resumes []gate.Redirect
	closed  bool
}

// NewMock creates a new mock state store for testing.
func NewMock() *Mock {
	return &Mock{values: make(map[string]string)}
}

func (m *Mock) Persist(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *Mock) Load(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Mock) LoadPrefs(defaults Prefs) (Prefs, error) { return loadPrefs(m, defaults) }

func (m *Mock) SaveVoice(voice string) { m.Persist(KeyVoice, voice) }

func (m *Mock) SaveSpeed(speed float64) {
	m.Persist(KeySpeed, strconv.FormatFloat(speed, 'f', -1, 64))
}

func (m *Mock) SaveMode(mode string) { m.Persist(KeyMode, mode) }

func (m *Mock) SaveVolume(volume int) { m.Persist(KeyVolume, strconv.Itoa(volume)) }

func (m *Mock) SaveMuted(muted bool) { m.Persist(KeyMuted, strconv.FormatBool(muted)) }

func (m *Mock) SaveResume(r gate.Redirect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes = append(m.resumes, r)
	return nil
}

func (m *Mock) TakeResume() (*gate.Redirect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resumes) == 0 {
		return nil, nil //nolint:nilnil // absent intent is not an error
	}
	r := m.resumes[len(m.resumes)-1]
	m.resumes = nil
	return &r, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
