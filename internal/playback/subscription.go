package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged <-chan StateChange
	ItemChanged  <-chan ItemChange
	ModeChanged  <-chan ModeChange
	Notices      <-chan Notice
	Redirects    <-chan RedirectEvent
	Errors       <-chan ErrorEvent
	Done         <-chan struct{}

	// Internal write channels
	stateCh    chan StateChange
	itemCh     chan ItemChange
	modeCh     chan ModeChange
	noticeCh   chan Notice
	redirectCh chan RedirectEvent
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:    make(chan StateChange, eventBufferSize),
		itemCh:     make(chan ItemChange, eventBufferSize),
		modeCh:     make(chan ModeChange, eventBufferSize),
		noticeCh:   make(chan Notice, eventBufferSize),
		redirectCh: make(chan RedirectEvent, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.ItemChanged = s.itemCh
	s.ModeChanged = s.modeCh
	s.Notices = s.noticeCh
	s.Redirects = s.redirectCh
	s.Errors = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendItem sends an item change event (non-blocking).
func (s *Subscription) sendItem(e ItemChange) {
	select {
	case s.itemCh <- e:
	default:
	}
}

// sendMode sends a mode change event (non-blocking).
func (s *Subscription) sendMode(e ModeChange) {
	select {
	case s.modeCh <- e:
	default:
	}
}

// sendNotice sends a notice (non-blocking).
func (s *Subscription) sendNotice(e Notice) {
	select {
	case s.noticeCh <- e:
	default:
	}
}

// sendRedirect sends a redirect event (non-blocking).
func (s *Subscription) sendRedirect(e RedirectEvent) {
	select {
	case s.redirectCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
