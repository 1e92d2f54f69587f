package playback

import "github.com/llehouerou/tilawa/internal/gate"

// StateChange is emitted when the load state changes.
type StateChange struct {
	Previous LoadState
	Current  LoadState
}

// ItemChange is emitted when the current item moves.
//
// Emitted when a switch is requested, before the item is loaded, so the
// host can highlight the target immediately. A request that is later
// superseded still emits its own ItemChange.
type ItemChange struct {
	PreviousIndex int
	Index         int
	Number        int
}

// NoticeKind enumerates informational notices.
type NoticeKind int

const (
	// NoticeItemComplete: the item ended in Single mode.
	NoticeItemComplete NoticeKind = iota
	// NoticeCollectionComplete: the last item ended in Continuous mode.
	NoticeCollectionComplete
	// NoticeSwitchPending: a request arrived while a switch was in flight.
	NoticeSwitchPending
	// NoticeRepeat: the item restarted in Repeat mode.
	NoticeRepeat
)

// String returns the notice name.
func (k NoticeKind) String() string {
	switch k {
	case NoticeItemComplete:
		return "ItemComplete"
	case NoticeCollectionComplete:
		return "CollectionComplete"
	case NoticeSwitchPending:
		return "SwitchPending"
	case NoticeRepeat:
		return "Repeat"
	default:
		return "Unknown"
	}
}

// Notice is a non-error message for the host.
type Notice struct {
	Kind   NoticeKind
	Number int
	Count  int // repeat count for NoticeRepeat
}

// ModeChange is emitted when the mode changes or the repeat counter resets.
type ModeChange struct {
	Mode        Mode
	RepeatCount int
}

// RedirectEvent is emitted when the access gate stops playback.
type RedirectEvent struct {
	Redirect gate.Redirect
}

// ErrorEvent is emitted when an error becomes user visible.
type ErrorEvent struct {
	Operation string // e.g., "load verse", "seek"
	Number    int    // item number if applicable
	Err       error
}
