package transport

import "strings"

// Action represents a user-triggerable transport action.
type Action string

const (
	ActionPlayPause   Action = "play_pause"
	ActionNext        Action = "next_verse"
	ActionPrevious    Action = "prev_verse"
	ActionVolumeUp    Action = "volume_up"
	ActionVolumeDown  Action = "volume_down"
	ActionMute        Action = "mute"
	ActionSpeedDown   Action = "speed_down"
	ActionSpeedUp     Action = "speed_up"
	ActionCycleMode   Action = "cycle_mode"
	ActionNextVoice   Action = "next_voice"
	ActionSeekStart   Action = "seek_start"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"
	ActionRetry       Action = "retry"
)

// Binding maps keys to an action.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
}

// DefaultBindings are the player shortcuts.
var DefaultBindings = []Binding{
	{ActionPlayPause, []string{"space"}, "Play/pause"},
	{ActionNext, []string{"right", "l"}, "Next verse"},
	{ActionPrevious, []string{"left", "h"}, "Previous verse"},
	{ActionVolumeUp, []string{"up"}, "Volume +5"},
	{ActionVolumeDown, []string{"down"}, "Volume -5"},
	{ActionMute, []string{"m"}, "Mute"},
	{ActionSpeedDown, []string{"["}, "Slower"},
	{ActionSpeedUp, []string{"]"}, "Faster"},
	{ActionCycleMode, []string{"r"}, "Cycle mode"},
	{ActionNextVoice, []string{"v"}, "Next reciter"},
	{ActionSeekStart, []string{"0"}, "Restart verse"},
	{ActionSeekForward, []string{"."}, "Seek +5s"},
	{ActionSeekBack, []string{","}, "Seek -5s"},
	{ActionRetry, []string{"t"}, "Try again"},
}

// Resolver maps key strings to actions.
type Resolver struct {
	bindings map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys (for help)
}

// NewResolver creates a resolver from bindings. Later bindings win when a
// key is bound twice.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: make(map[string]Action),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			r.bindings[key] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	return r
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// dedupe removes duplicate strings from a slice.
func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}

// KeyEvent is a key press as seen by the transport.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Meta  bool
	Shift bool
	// InTextInput is set when focus is inside a text field.
	InTextInput bool
}

// Modified reports whether any modifier is held.
func (e KeyEvent) Modified() bool {
	return e.Ctrl || e.Alt || e.Meta || e.Shift
}

// FromString parses a terminal key string such as "ctrl+right" or " ".
func FromString(s string) KeyEvent {
	if s == " " {
		return KeyEvent{Key: "space"}
	}
	var ev KeyEvent
	for {
		prefix, rest, ok := strings.Cut(s, "+")
		if !ok || rest == "" {
			break
		}
		switch prefix {
		case "ctrl":
			ev.Ctrl = true
		case "alt":
			ev.Alt = true
		case "meta", "super":
			ev.Meta = true
		case "shift":
			ev.Shift = true
		default:
			ev.Key = s
			return ev
		}
		s = rest
	}
	if s == " " {
		s = "space"
	}
	ev.Key = s
	return ev
}
