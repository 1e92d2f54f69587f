package playback

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tilawa/internal/media"
)

// preloader fetches the next verse into a speculative handle that never
// plays. Its fields are guarded by the owning Session's mu.
type preloader struct {
	handle   media.Handle
	url      string
	recorder Recorder
	log      zerolog.Logger
}

func newPreloader(h media.Handle, rec Recorder, log zerolog.Logger) *preloader {
	return &preloader{
		handle:   h,
		recorder: rec,
		log:      log.With().Str("handle", "preload").Logger(),
	}
}

// preload starts a silent load of url unless it is already the pending one.
func (p *preloader) preload(url string) {
	if p.url == url {
		return
	}
	p.url = url
	if err := p.handle.Load(url); err != nil {
		p.log.Debug().Err(err).Str("url", url).Msg("preload not started")
		p.url = ""
		return
	}
	p.recorder.Preload()
}

// take moves url into primary if it is the preloaded source and has
// finished loading.
func (p *preloader) take(primary media.Handle, url string) bool {
	if p.url == "" || p.url != url {
		return false
	}
	p.url = ""
	if err := primary.Adopt(p.handle); err != nil {
		p.log.Debug().Err(err).Str("url", url).Msg("preload miss")
		return false
	}
	return true
}

// abandon forgets the pending source. The fetch itself runs to completion.
func (p *preloader) abandon() {
	p.url = ""
}

// watch drains speculative handle events until ctx is done.
func (p *preloader) watch(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	events := p.handle.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case media.EventError:
				p.log.Debug().Err(ev.Err).Str("url", ev.Source).Msg("preload failed")
			case media.EventReady:
				p.log.Debug().Str("url", ev.Source).Msg("preloaded")
			case media.EventWaiting, media.EventEnded, media.EventAborted:
			}
		}
	}
}

func (p *preloader) close() error {
	return p.handle.Close()
}

// preloadNextLocked fetches the verse after the current one when playing
// continuously and the gate would let the caller reach it. Caller holds mu.
func (s *Session) preloadNextLocked() {
	if s.pre == nil || s.mode != ModeContinuous || s.current+1 >= len(s.items) {
		return
	}
	next := s.items[s.current+1].Number
	if !s.canAdvanceLocked(next).Allowed {
		return
	}
	url, err := s.resolver.Resolve(s.collectionID, next, s.voice)
	if err != nil {
		return
	}
	s.pre.preload(url)
}
