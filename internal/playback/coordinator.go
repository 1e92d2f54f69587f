package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/tilawa/internal/errmsg"
	"github.com/llehouerou/tilawa/internal/media"
	"github.com/llehouerou/tilawa/internal/retry"
)

var (
	// ErrSwitchPending is returned when a request arrives while a switch is
	// in flight. The request is kept and replaces any earlier pending one.
	ErrSwitchPending = errors.New("switch in progress, please wait")
	// ErrReadyTimeout is the deadlock guard: the handle never reported ready.
	ErrReadyTimeout = errors.New("media did not become ready in time")

	errMediaFailed = errors.New("media error")
)

const msgSwitchFailed = "Switch failed, press t to try again"

// attempt is one run of the switch loop for a single request.
type attempt struct {
	req    Request
	url    string
	events chan media.Event
	cancel context.CancelFunc
}

// requestSwitchLocked asks for number to become the loaded item. Caller holds mu.
//
// restart replays the item even when its source is already attached.
func (s *Session) requestSwitchLocked(number int, resume, restart bool) error {
	if s.closed {
		return ErrClosed
	}
	idx := s.indexOf(number)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownItem, number)
	}

	if !restart && !s.switching && s.loadedURL != "" {
		if url, err := s.resolver.Resolve(s.collectionID, number, s.voice); err == nil &&
			url == s.loadedURL && s.primary.Source() == url {
			return nil
		}
	}

	wasPlaying := resume || s.state == StatePlaying || (s.switching && s.latest.Resume)

	s.generation++
	s.latest = Request{
		Number:     number,
		Resume:     wasPlaying,
		Restart:    restart,
		Generation: s.generation,
	}
	s.recorder.SwitchRequested()
	s.log.Debug().
		Int("verse", number).
		Bool("resume", wasPlaying).
		Uint64("generation", s.generation).
		Msg("switch requested")

	// Silence the current item right away so two verses never overlap.
	s.primary.Pause()
	s.errMsg = ""

	if idx != s.current {
		prev := s.current
		s.current = idx
		s.notifyItemLocked(prev)
	}

	if s.switching {
		s.pending = true
		if s.attempt != nil {
			s.attempt.cancel()
		}
		s.notice(Notice{Kind: NoticeSwitchPending, Number: number})
		return ErrSwitchPending
	}

	s.switching = true
	s.pending = true
	s.setStateLocked(StateLoading)
	s.wg.Add(1)
	go s.runSwitches()
	return nil
}

// runSwitches executes requests until none is pending. At most one runs at
// a time; only the latest request can take effect.
func (s *Session) runSwitches() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		if s.closed || !s.pending {
			s.switching = false
			s.attempt = nil
			if !s.closed && s.state == StateLoading {
				s.setStateLocked(s.stoppedStateLocked())
			}
			s.mu.Unlock()
			return
		}
		s.pending = false
		ctx, cancel := context.WithCancel(s.ctx)
		at := &attempt{
			req:    s.latest,
			events: make(chan media.Event, 8),
			cancel: cancel,
		}
		s.attempt = at
		s.mu.Unlock()

		s.execute(ctx, at)
		cancel()
	}
}

// execute loads at.req into the primary handle.
//
// A superseded attempt is not torn down: its wait is cut short and its
// outcome is dropped because its generation is no longer the latest.
func (s *Session) execute(ctx context.Context, at *attempt) {
	req := at.req

	if !sleep(ctx, s.settleDelay) {
		s.discard(req)
		return
	}

	s.mu.Lock()
	if s.closed || req.Generation != s.generation {
		s.mu.Unlock()
		s.discard(req)
		return
	}
	s.retryCount = 0
	url, err := s.resolver.Resolve(s.collectionID, req.Number, s.voice)
	if err != nil {
		s.failLocked(req, FailureResolve, errmsg.Format(errmsg.OpVerseLoad, err), err)
		s.mu.Unlock()
		return
	}

	if req.Restart && url == s.loadedURL && s.primary.Source() == url {
		s.restartLocked(req)
		s.mu.Unlock()
		return
	}

	at.url = url
	s.loadedURL = ""
	adopted := s.pre != nil && s.pre.take(s.primary, url)
	s.mu.Unlock()

	load := func(ctx context.Context) error {
		if !adopted {
			if err := s.primary.Load(url); err != nil {
				return retry.Permanent(err)
			}
		}
		return s.awaitReady(ctx, at)
	}
	reload := func(ctx context.Context) error {
		adopted = false
		if err := s.primary.Reload(); err != nil {
			return retry.Permanent(err)
		}
		return s.awaitReady(ctx, at)
	}

	policy := s.policy
	policy.OnRetry = func(n int, err error) {
		s.recorder.LoadRetry(n)
		s.mu.Lock()
		if req.Generation == s.generation {
			s.retryCount = n
		}
		s.mu.Unlock()
		s.log.Warn().Err(err).Int("verse", req.Number).Int("attempt", n).Msg("verse load failed, retrying")
	}

	err = policy.Do(ctx, load, reload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if req.Generation != s.generation {
		s.recorder.SwitchStale()
		s.log.Debug().Int("verse", req.Number).Uint64("generation", req.Generation).Msg("discarding stale switch")
		return
	}

	var exhausted *retry.ExhaustedError
	switch {
	case err == nil:
		s.completeLocked(req, url, adopted)
	case errors.Is(err, ErrReadyTimeout):
		s.failLocked(req, FailureTimeout, msgSwitchFailed, err)
	case retry.Classify(err) == retry.Benign:
		s.log.Debug().Err(err).Int("verse", req.Number).Msg("switch aborted")
	default:
		if errors.As(err, &exhausted) {
			s.retryCount = exhausted.Attempts - 1
		}
		s.failLocked(req, FailureExhausted, errmsg.TryAgain(errmsg.Format(errmsg.OpVerseLoad, err)), err)
	}
}

// awaitReady waits for the attempt's source to become ready.
func (s *Session) awaitReady(ctx context.Context, at *attempt) error {
	timer := time.NewTimer(s.readyTimeout)
	defer timer.Stop()
	for {
		select {
		case ev := <-at.events:
			switch ev.Kind {
			case media.EventReady:
				return nil
			case media.EventError:
				if ev.Err == nil {
					return errMediaFailed
				}
				return ev.Err
			case media.EventAborted:
				return fmt.Errorf("%w: %w", retry.ErrAborted, ev.Err)
			case media.EventWaiting, media.EventEnded:
			}
		case <-timer.C:
			return retry.Permanent(ErrReadyTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// completeLocked applies a successful load. Caller holds mu.
func (s *Session) completeLocked(req Request, url string, adopted bool) {
	s.loadedURL = url
	s.loadedNumber = req.Number
	s.retryCount = 0
	s.applyOutputLocked(s.primary)
	s.recorder.SwitchCompleted(adopted)
	s.log.Debug().Int("verse", req.Number).Bool("preloaded", adopted).Msg("verse ready")

	s.startLocked(req)
	s.preloadNextLocked()
}

// restartLocked replays the loaded item from zero without reloading it.
func (s *Session) restartLocked(req Request) {
	if err := s.primary.Seek(0); err != nil {
		s.log.Debug().Err(err).Msg("rewind before repeat failed")
	}
	s.recorder.SwitchCompleted(false)
	s.startLocked(req)
}

// startLocked plays the loaded item if the latest intent asks for it.
func (s *Session) startLocked(req Request) {
	if !s.latest.Resume {
		s.setStateLocked(StateReady)
		return
	}
	if err := s.primary.Play(); err != nil {
		s.failLocked(req, FailurePlay, errmsg.Format(errmsg.OpPlaybackStart, err), err)
		return
	}
	s.setStateLocked(StatePlaying)
}

// failLocked surfaces a terminal switch failure. Caller holds mu.
func (s *Session) failLocked(req Request, reason, msg string, err error) {
	s.errMsg = msg
	s.recorder.SwitchFailed(reason)
	s.setStateLocked(StateErrored)
	s.log.Error().Err(err).Int("verse", req.Number).Str("reason", reason).Msg("switch failed")
	s.reportError(ErrorEvent{Operation: string(errmsg.OpVerseLoad), Number: req.Number, Err: err})
}

func (s *Session) discard(req Request) {
	s.recorder.SwitchStale()
	s.log.Debug().Int("verse", req.Number).Uint64("generation", req.Generation).Msg("switch superseded before load")
}

// stoppedStateLocked is the state for a session that is not playing.
func (s *Session) stoppedStateLocked() LoadState {
	switch {
	case s.state == StateErrored:
		return StateErrored
	case s.loadedURL != "":
		return StateReady
	default:
		return StateIdle
	}
}

// sleep waits for d or until ctx is done. It reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
