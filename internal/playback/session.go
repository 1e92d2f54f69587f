// Package playback drives one media handle through the verses of a surah.
//
// A Session serializes "load and maybe play item N" requests, keeps the
// user's play intent across switches, retries failed loads, preloads the
// next verse and decides what happens when a verse ends.
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tilawa/internal/gate"
	"github.com/llehouerou/tilawa/internal/media"
	"github.com/llehouerou/tilawa/internal/retry"
)

const (
	DefaultReadyTimeout = 5 * time.Second
	DefaultSettleDelay  = 50 * time.Millisecond

	MinSpeed = 0.25
	MaxSpeed = 3.0
)

var (
	ErrClosed      = errors.New("playback: session closed")
	ErrNoItems     = errors.New("playback: no items")
	ErrUnknownItem = errors.New("playback: unknown item")
	ErrNoResolver  = errors.New("playback: resolver is required")
	ErrNoHandle    = errors.New("playback: primary handle is required")
)

// Resolver maps a verse to its audio URL.
type Resolver interface {
	Resolve(collectionID, itemNumber int, voice string) (string, error)
}

// Gate decides whether the caller may move forward to an item.
type Gate interface {
	CanAdvanceTo(collectionID, itemNumber int) gate.Decision
}

// Config configures a Session. Primary and Resolver are required.
type Config struct {
	CollectionID int
	Items        []Item
	// StartNumber is the item number to select initially.
	StartNumber int

	Primary media.Handle
	// Speculative is the preload handle. Nil disables preloading.
	Speculative media.Handle

	Resolver   Resolver
	Gate       Gate
	Redirector gate.Redirector

	Retry        retry.Policy
	ReadyTimeout time.Duration
	SettleDelay  time.Duration

	Mode   Mode
	Voice  string
	Speed  float64
	Volume int
	Muted  bool

	Recorder Recorder
	Logger   zerolog.Logger
}

// Snapshot is the host-visible state of a Session.
type Snapshot struct {
	CollectionID  int
	CurrentIndex  int
	CurrentNumber int
	IsPlaying     bool
	IsLoading     bool
	ErrorMessage  string
	LoadState     LoadState
	RetryCount    int
	Mode          Mode
	RepeatCount   int
	Voice         string
	Speed         float64
	Volume        int
	Muted         bool
	Position      time.Duration
	Duration      time.Duration
	Generation    uint64
}

// Session is the playback aggregate for one collection.
type Session struct {
	mu sync.Mutex

	collectionID int
	resolver     Resolver
	gate         Gate
	redirector   gate.Redirector
	policy       retry.Policy
	readyTimeout time.Duration
	settleDelay  time.Duration
	recorder     Recorder
	log          zerolog.Logger

	primary media.Handle
	pre     *preloader

	items       []Item
	current     int
	mode        Mode
	voice       string
	speed       float64
	volume      int
	muted       bool
	repeatCount int

	state        LoadState
	retryCount   int
	errMsg       string
	loadedURL    string
	loadedNumber int

	// Switch coordination: generation orders requests, switching is the
	// lock, latest is the newest request and pending says it has not been
	// picked up by the switch loop yet.
	generation uint64
	switching  bool
	pending    bool
	latest     Request
	attempt    *attempt

	subs   []*Subscription
	subsMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates a session and starts watching the media handles.
func New(cfg Config) (*Session, error) {
	if cfg.Primary == nil {
		return nil, ErrNoHandle
	}
	if cfg.Resolver == nil {
		return nil, ErrNoResolver
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.BaseDelay == 0 {
		cfg.Retry = retry.DefaultPolicy()
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.Speed == 0 {
		cfg.Speed = 1
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		collectionID: cfg.CollectionID,
		resolver:     cfg.Resolver,
		gate:         cfg.Gate,
		redirector:   cfg.Redirector,
		policy:       cfg.Retry,
		readyTimeout: cfg.ReadyTimeout,
		settleDelay:  cfg.SettleDelay,
		recorder:     cfg.Recorder,
		log:          cfg.Logger.With().Str("component", "playback").Int("surah", cfg.CollectionID).Logger(),
		primary:      cfg.Primary,
		items:        append([]Item(nil), cfg.Items...),
		mode:         cfg.Mode,
		voice:        cfg.Voice,
		speed:        clampSpeed(cfg.Speed),
		volume:       clampVolume(cfg.Volume),
		muted:        cfg.Muted,
		ctx:          ctx,
		cancel:       cancel,
	}
	s.current = max(s.indexOf(cfg.StartNumber), 0)
	s.applyOutputLocked(s.primary)

	if cfg.Speculative != nil {
		s.pre = newPreloader(cfg.Speculative, s.recorder, s.log)
		s.applyOutputLocked(cfg.Speculative)
		s.wg.Add(1)
		go s.pre.watch(ctx, &s.wg)
	}

	s.wg.Add(1)
	go s.watch()
	return s, nil
}

// Subscribe creates a new event subscription.
func (s *Session) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.closed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Snapshot returns the current host-visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		CollectionID: s.collectionID,
		CurrentIndex: s.current,
		IsPlaying:    s.state == StatePlaying,
		IsLoading:    s.switching,
		ErrorMessage: s.errMsg,
		LoadState:    s.state,
		RetryCount:   s.retryCount,
		Mode:         s.mode,
		RepeatCount:  s.repeatCount,
		Voice:        s.voice,
		Speed:        s.speed,
		Volume:       s.volume,
		Muted:        s.muted,
		Generation:   s.generation,
	}
	if len(s.items) > 0 {
		snap.CurrentNumber = s.items[s.current].Number
	}
	if s.loadedURL != "" && !s.switching {
		snap.Position = s.primary.Position()
		snap.Duration = s.primary.Duration()
	}
	return snap
}

// Items returns a copy of the session's items.
func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// CollectionID returns the surah this session plays.
func (s *Session) CollectionID() int { return s.collectionID }

// SetItems replaces the collection and moves the current index to the item
// numbered current, or to the first item when it is absent. It never
// triggers a switch.
func (s *Session) SetItems(items []Item, current int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.items = append([]Item(nil), items...)
	s.current = max(s.indexOf(current), 0)
	if len(s.items) > 0 && s.current != prev {
		s.notifyItemLocked(prev)
	}
}

// Close stops the session, waits for its goroutines and closes both handles.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	err := s.primary.Close()
	if s.pre != nil {
		err = errors.Join(err, s.pre.close())
	}

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return err
}

// watch consumes primary handle events until the session closes.
func (s *Session) watch() {
	defer s.wg.Done()
	events := s.primary.Events()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handleMediaEvent(ev)
		}
	}
}

func (s *Session) handleMediaEvent(ev media.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if ev.Kind == media.EventEnded {
		if ev.Source == s.loadedURL && !s.switching && s.state == StatePlaying {
			s.handleEndedLocked()
		}
		return
	}

	if at := s.attempt; at != nil && at.url != "" && at.url == ev.Source {
		select {
		case at.events <- ev:
		default:
		}
		return
	}

	s.log.Debug().
		Stringer("kind", ev.Kind).
		Str("url", ev.Source).
		Msg("ignoring media event for inactive source")
}

func (s *Session) indexOf(number int) int {
	for i, it := range s.items {
		if it.Number == number {
			return i
		}
	}
	return -1
}

// applyOutputLocked pushes volume, mute and speed to h.
func (s *Session) applyOutputLocked(h media.Handle) {
	h.SetVolume(float64(s.volume) / 100)
	h.SetMuted(s.muted)
	h.SetSpeed(s.speed)
}

func (s *Session) setStateLocked(st LoadState) {
	if st == s.state {
		return
	}
	prev := s.state
	s.state = st
	s.broadcast(func(sub *Subscription) {
		sub.sendState(StateChange{Previous: prev, Current: st})
	})
}

func (s *Session) notifyItemLocked(prev int) {
	e := ItemChange{PreviousIndex: prev, Index: s.current, Number: s.items[s.current].Number}
	s.broadcast(func(sub *Subscription) { sub.sendItem(e) })
}

func (s *Session) notifyModeLocked() {
	e := ModeChange{Mode: s.mode, RepeatCount: s.repeatCount}
	s.broadcast(func(sub *Subscription) { sub.sendMode(e) })
}

func (s *Session) notice(n Notice) {
	s.broadcast(func(sub *Subscription) { sub.sendNotice(n) })
}

func (s *Session) reportError(e ErrorEvent) {
	s.broadcast(func(sub *Subscription) { sub.sendError(e) })
}

func (s *Session) broadcast(send func(*Subscription)) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, sub := range s.subs {
		send(sub)
	}
}

func clampSpeed(v float64) float64 {
	return min(max(v, MinSpeed), MaxSpeed)
}

func clampVolume(v int) int {
	return min(max(v, 0), 100)
}
