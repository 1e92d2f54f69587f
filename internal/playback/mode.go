package playback

import (
	"github.com/llehouerou/tilawa/internal/errmsg"
	"github.com/llehouerou/tilawa/internal/gate"
)

// handleEndedLocked decides what follows a verse that ended on its own.
// Caller holds mu.
func (s *Session) handleEndedLocked() {
	if len(s.items) == 0 {
		return
	}
	number := s.items[s.current].Number

	switch s.mode {
	case ModeSingle:
		s.stopLocked()
		s.notice(Notice{Kind: NoticeItemComplete, Number: number})

	case ModeRepeat:
		s.repeatCount++
		s.notifyModeLocked()
		s.notice(Notice{Kind: NoticeRepeat, Number: number, Count: s.repeatCount})
		if err := s.requestSwitchLocked(number, true, true); err != nil {
			s.log.Warn().Err(err).Int("verse", number).Msg("repeat failed")
		}

	case ModeContinuous:
		if s.current >= len(s.items)-1 {
			s.stopLocked()
			s.notice(Notice{Kind: NoticeCollectionComplete, Number: number})
			return
		}
		next := s.items[s.current+1].Number
		if d := s.canAdvanceLocked(next); !d.Allowed {
			s.denyLocked(*d.Redirect)
			return
		}
		if err := s.requestSwitchLocked(next, true, false); err != nil {
			s.log.Warn().Err(err).Int("verse", next).Msg("auto-advance failed")
		}
	}
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode changes the mode immediately. It resets the repeat counter and
// never starts a switch; leaving Continuous abandons the preloaded verse.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	s.repeatCount = 0
	if m == ModeContinuous {
		if !s.switching && s.loadedURL != "" {
			s.preloadNextLocked()
		}
	} else if s.pre != nil {
		s.pre.abandon()
	}
	s.notifyModeLocked()
}

// CycleMode moves to the next mode and returns it.
func (s *Session) CycleMode() Mode {
	s.mu.Lock()
	next := s.mode.Next()
	s.mu.Unlock()
	s.SetMode(next)
	return next
}

// canAdvanceLocked consults the gate. A nil gate allows everything.
func (s *Session) canAdvanceLocked(number int) gate.Decision {
	if s.gate == nil {
		return gate.Decision{Allowed: true}
	}
	d := s.gate.CanAdvanceTo(s.collectionID, number)
	if !d.Allowed && d.Redirect == nil {
		d.Redirect = &gate.Redirect{CollectionID: s.collectionID, ItemNumber: number, Reason: gate.ReasonSignIn}
	}
	return d
}

// denyLocked stops playback, drops any queued switch and hands off to the
// identity flow. Caller holds mu.
func (s *Session) denyLocked(r gate.Redirect) {
	if s.switching {
		// Invalidate whatever is in flight so nothing starts playing.
		s.generation++
		s.pending = false
		s.latest.Resume = false
		if s.attempt != nil {
			s.attempt.cancel()
		}
	}
	s.stopLocked()
	if s.pre != nil {
		s.pre.abandon()
	}
	s.recorder.Redirect()
	s.log.Info().Int("verse", r.ItemNumber).Str("reason", r.Reason).Msg("access gate redirect")
	s.broadcast(func(sub *Subscription) { sub.sendRedirect(RedirectEvent{Redirect: r}) })

	if s.redirector == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.redirector.RequestIdentityThenResume(s.ctx, r); err != nil {
			s.log.Error().Err(err).Msg("identity handoff failed")
			s.reportError(ErrorEvent{Operation: string(errmsg.OpIdentityHandoff), Number: r.ItemNumber, Err: err})
		}
	}()
}

// stopLocked halts playback and rewinds the loaded verse. Caller holds mu.
func (s *Session) stopLocked() {
	s.primary.Stop()
	if s.switching {
		return
	}
	s.setStateLocked(s.stoppedStateLocked())
}
