// internal/media/mock.go
package media

import (
	"errors"
	"sync"
	"time"
)

// ErrMockLoad is the default error injected by FailNext.
var ErrMockLoad = errors.New("mock: load failed")

// Mock is an in-memory Handle for tests.
//
// By default every Load becomes Ready immediately. SetLoadDelay defers
// readiness on the (fake) clock, SetAutoReady(false) waits for CompleteLoad,
// and FailNext/FailSource inject transient errors.
type Mock struct {
	mu sync.Mutex

	events chan Event
	src    string
	ready  bool
	seq    uint64

	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64
	muted    bool
	speed    float64

	autoReady  bool
	loadDelay  time.Duration
	failures   int
	failErr    error
	failSource map[string]int

	loads   []string
	reloads int
	adopted []string
	plays   []string
	closed  bool
}

// NewMock creates a mock handle for testing.
func NewMock() *Mock {
	return &Mock{
		events:     make(chan Event, eventBufferSize),
		duration:   5 * time.Second,
		volume:     1,
		speed:      1,
		autoReady:  true,
		failErr:    ErrMockLoad,
		failSource: make(map[string]int),
	}
}

func (m *Mock) Load(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.src != "" && !m.ready && m.src != url {
		m.emit(Event{Kind: EventAborted, Source: m.src, Err: ErrAborted})
	}
	m.seq++
	m.src = url
	m.ready = false
	m.playing = false
	m.position = 0
	m.loads = append(m.loads, url)
	m.schedule(m.seq, url)
	return nil
}

func (m *Mock) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.src == "" {
		return ErrNoSource
	}
	m.seq++
	m.ready = false
	m.playing = false
	m.reloads++
	m.schedule(m.seq, m.src)
	return nil
}

func (m *Mock) Adopt(from Handle) error {
	other, ok := from.(*Mock)
	if !ok {
		return errors.New("mock: can only adopt from another mock")
	}
	other.mu.Lock()
	src, ready := other.src, other.ready
	if ready {
		other.src = ""
		other.ready = false
	}
	other.mu.Unlock()
	if !ready {
		return ErrNotReady
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.seq++
	m.src = src
	m.ready = true
	m.playing = false
	m.position = 0
	m.adopted = append(m.adopted, src)
	m.emit(Event{Kind: EventReady, Source: src})
	return nil
}

// schedule completes the load identified by seq. Caller holds mu.
func (m *Mock) schedule(seq uint64, url string) {
	if !m.autoReady {
		return
	}
	if m.loadDelay <= 0 {
		m.finish(url)
		return
	}
	time.AfterFunc(m.loadDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.seq == seq && !m.closed {
			m.finish(url)
		}
	})
}

// finish resolves the current load to Ready or an injected Error. Caller holds mu.
func (m *Mock) finish(url string) {
	if n := m.failSource[url]; n > 0 {
		m.failSource[url] = n - 1
		m.emit(Event{Kind: EventError, Source: url, Err: m.failErr})
		return
	}
	if m.failures > 0 {
		m.failures--
		m.emit(Event{Kind: EventError, Source: url, Err: m.failErr})
		return
	}
	m.ready = true
	m.emit(Event{Kind: EventReady, Source: url})
}

// emit sends an event without blocking. Caller holds mu.
func (m *Mock) emit(e Event) {
	select {
	case m.events <- e:
	default:
	}
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.src == "" {
		return ErrNoSource
	}
	if !m.ready {
		return ErrNotReady
	}
	if !m.playing {
		m.playing = true
		m.plays = append(m.plays, m.src)
	}
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
}

func (m *Mock) Stop() {
	m.mu.Lock()
	m.playing = false
	m.position = 0
	m.mu.Unlock()
}

func (m *Mock) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.src == "" {
		return ErrNoSource
	}
	m.position = pos
	return nil
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	m.volume = ClampLevel(level)
	m.mu.Unlock()
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
}

func (m *Mock) SetSpeed(ratio float64) {
	m.mu.Lock()
	m.speed = ratio
	m.mu.Unlock()
}

func (m *Mock) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.playing = false
	m.mu.Unlock()
	return nil
}

// Test helpers

// SetAutoReady controls whether loads complete on their own.
func (m *Mock) SetAutoReady(auto bool) {
	m.mu.Lock()
	m.autoReady = auto
	m.mu.Unlock()
}

// SetLoadDelay delays readiness of subsequent loads.
func (m *Mock) SetLoadDelay(d time.Duration) {
	m.mu.Lock()
	m.loadDelay = d
	m.mu.Unlock()
}

// FailNext makes the next n load completions report an error.
func (m *Mock) FailNext(n int, err error) {
	m.mu.Lock()
	m.failures = n
	if err != nil {
		m.failErr = err
	}
	m.mu.Unlock()
}

// FailSource makes the next n completions for url report an error.
func (m *Mock) FailSource(url string, n int) {
	m.mu.Lock()
	m.failSource[url] = n
	m.mu.Unlock()
}

// CompleteLoad resolves the pending load when auto-ready is off.
func (m *Mock) CompleteLoad() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.src != "" && !m.ready {
		m.finish(m.src)
	}
}

// SimulateEnded reports natural end of the current source.
func (m *Mock) SimulateEnded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.position = m.duration
	m.emit(Event{Kind: EventEnded, Source: m.src})
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	m.duration = d
	m.mu.Unlock()
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	m.position = d
	m.mu.Unlock()
}

// Loads returns every URL passed to Load, in order.
func (m *Mock) Loads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loads...)
}

// Reloads returns how many times Reload was called.
func (m *Mock) Reloads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloads
}

// Adopted returns every source taken over through Adopt.
func (m *Mock) Adopted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.adopted...)
}

// Plays returns the source of every transition into playing.
func (m *Mock) Plays() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.plays...)
}

// IsReady reports whether the current source finished loading.
func (m *Mock) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Volume returns the last level set.
func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Muted returns the last mute state set.
func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Speed returns the last speed ratio set.
func (m *Mock) Speed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

// Verify Mock implements Handle at compile time.
var _ Handle = (*Mock)(nil)
