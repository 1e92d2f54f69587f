package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/rs/zerolog"
)

const maxClipBytes = 16 << 20

// Stream fetches a clip over HTTP into memory, decodes it and plays it
// through the shared beep speaker. Only one Stream should play at a time;
// a Stream used for preloading never calls Play.
type Stream struct {
	mu     sync.Mutex
	client *http.Client
	out    output
	log    zerolog.Logger
	events chan Event

	src   string
	seq   uint64
	data  []byte
	ready bool

	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	volume    *effects.Volume
	chain     uint64
	playing   bool

	level  float64
	muted  bool
	speed  float64
	closed bool
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithHTTPClient sets the client used to fetch clips.
func WithHTTPClient(c *http.Client) StreamOption {
	return func(s *Stream) { s.client = c }
}

// WithLogger sets the stream logger.
func WithLogger(l zerolog.Logger) StreamOption {
	return func(s *Stream) { s.log = l }
}

// NewStream creates a stream handle.
func NewStream(opts ...StreamOption) *Stream {
	s := &Stream{
		client: &http.Client{Timeout: 30 * time.Second},
		out:    speakerOutput{},
		log:    zerolog.Nop(),
		events: make(chan Event, eventBufferSize),
		level:  1,
		speed:  1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stream) Load(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.releaseLocked()
	s.seq++
	s.src = url
	s.data = nil
	s.ready = false
	go s.fetch(s.seq, url)
	return nil
}

func (s *Stream) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.src == "" {
		return ErrNoSource
	}
	s.releaseLocked()
	s.seq++
	s.data = nil
	s.ready = false
	go s.fetch(s.seq, s.src)
	return nil
}

// fetch downloads url. A fetch that completes after a newer Load keeps its
// bytes to itself and reports EventAborted.
func (s *Stream) fetch(seq uint64, url string) {
	s.emit(Event{Kind: EventWaiting, Source: url})
	data, err := s.download(url)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq || s.closed {
		s.emit(Event{Kind: EventAborted, Source: url, Err: ErrAborted})
		return
	}
	if err != nil {
		s.log.Debug().Err(err).Str("url", url).Msg("clip fetch failed")
		s.emit(Event{Kind: EventError, Source: url, Err: err})
		return
	}
	if err := s.attachLocked(data); err != nil {
		s.emit(Event{Kind: EventError, Source: url, Err: fmt.Errorf("decode: %w", err)})
		return
	}
	s.ready = true
	s.log.Debug().Str("url", url).Int("bytes", len(data)).Msg("clip ready")
	s.emit(Event{Kind: EventReady, Source: url})
}

func (s *Stream) download(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxClipBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// attachLocked decodes data as the current source. Caller holds mu.
func (s *Stream) attachLocked(data []byte) error {
	streamer, format, err := decodeMP3(memReader{bytes.NewReader(data)})
	if err != nil {
		return err
	}
	s.data = data
	s.streamer = streamer
	s.format = format
	return nil
}

func (s *Stream) Adopt(from Handle) error {
	other, ok := from.(*Stream)
	if !ok {
		return errors.New("stream: can only adopt from another stream")
	}

	other.mu.Lock()
	src, data, ready := other.src, other.data, other.ready
	if ready {
		other.releaseLocked()
		other.seq++
		other.src = ""
		other.data = nil
		other.ready = false
	}
	other.mu.Unlock()
	if !ready {
		return ErrNotReady
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.releaseLocked()
	s.seq++
	s.src = src
	s.ready = false
	if err := s.attachLocked(data); err != nil {
		return err
	}
	s.ready = true
	s.emit(Event{Kind: EventReady, Source: src})
	return nil
}

func (s *Stream) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.src == "" {
		return ErrNoSource
	}
	if !s.ready || s.streamer == nil {
		return ErrNotReady
	}
	if s.playing {
		return nil
	}

	if s.ctrl != nil {
		s.out.lock()
		s.ctrl.Paused = false
		s.out.unlock()
		s.playing = true
		return nil
	}

	if err := s.out.init(); err != nil {
		return err
	}
	s.ctrl = &beep.Ctrl{Streamer: s.streamer, Paused: false}
	s.resampler = beep.ResampleRatio(4, s.baseRatio()*s.speed, s.ctrl)
	s.volume = &effects.Volume{
		Streamer: s.resampler,
		Base:     2,
		Volume:   levelToVolume(s.level),
		Silent:   s.muted,
	}
	s.chain++
	chain := s.chain
	s.out.play(beep.Seq(s.volume, beep.Callback(func() {
		// Runs on the output goroutine with the output locked.
		go s.ended(chain)
	})))
	s.playing = true
	return nil
}

func (s *Stream) ended(chain uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chain != s.chain {
		return
	}
	// The mixer has dropped the finished chain, so the next Play builds a
	// new one around the same decoder.
	s.ctrl = nil
	s.resampler = nil
	s.volume = nil
	s.playing = false
	s.emit(Event{Kind: EventEnded, Source: s.src})
}

func (s *Stream) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
}

func (s *Stream) pauseLocked() {
	if s.ctrl != nil && s.playing {
		s.out.lock()
		s.ctrl.Paused = true
		s.out.unlock()
	}
	s.playing = false
}

func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
	if s.streamer != nil {
		s.out.lock()
		_ = s.streamer.Seek(0)
		s.out.unlock()
	}
}

// releaseLocked detaches the playing chain and closes the decoder. Caller holds mu.
func (s *Stream) releaseLocked() {
	if s.ctrl != nil {
		s.out.clear()
		s.chain++
		s.ctrl = nil
		s.resampler = nil
		s.volume = nil
	}
	if s.streamer != nil {
		s.streamer.Close()
		s.streamer = nil
	}
	s.playing = false
}

func (s *Stream) baseRatio() float64 {
	if s.format.SampleRate == 0 {
		return 1
	}
	return float64(s.format.SampleRate) / float64(speakerRate)
}

func (s *Stream) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamer == nil {
		return ErrNoSource
	}
	n := max(s.format.SampleRate.N(pos), 0)
	s.out.lock()
	err := s.streamer.Seek(min(n, s.streamer.Len()))
	s.out.unlock()
	return err
}

func (s *Stream) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamer == nil {
		return 0
	}
	s.out.lock()
	n := s.streamer.Position()
	s.out.unlock()
	return s.format.SampleRate.D(n)
}

func (s *Stream) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamer == nil {
		return 0
	}
	s.out.lock()
	n := s.streamer.Len()
	s.out.unlock()
	return s.format.SampleRate.D(n)
}

func (s *Stream) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = ClampLevel(level)
	if s.volume != nil && !s.muted {
		s.out.lock()
		s.volume.Volume = levelToVolume(s.level)
		s.out.unlock()
	}
}

func (s *Stream) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
	if s.volume != nil {
		s.out.lock()
		s.volume.Silent = muted
		s.out.unlock()
	}
}

func (s *Stream) SetSpeed(ratio float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = ratio
	if s.resampler != nil {
		s.out.lock()
		s.resampler.SetRatio(s.baseRatio() * ratio)
		s.out.unlock()
	}
}

func (s *Stream) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src
}

func (s *Stream) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Stream) Events() <-chan Event { return s.events }

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.seq++
	s.releaseLocked()
	return nil
}

// emit sends an event without blocking.
func (s *Stream) emit(e Event) {
	select {
	case s.events <- e:
	default:
		s.log.Warn().Stringer("kind", e.Kind).Msg("media event dropped")
	}
}

// memReader serves a downloaded clip to the decoder.
type memReader struct {
	*bytes.Reader
}

func (memReader) Close() error { return nil }

// Verify Stream implements Handle at compile time.
var _ Handle = (*Stream)(nil)
