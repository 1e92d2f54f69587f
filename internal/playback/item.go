package playback

// Item is one playable verse. Number is the 1-based verse number within the
// collection, independent of the item's position in the session.
type Item struct {
	Number      int
	Text        string
	Translation string
}

// Request asks the coordinator to make Number the loaded item.
// Only the request carrying the latest Generation may change state.
type Request struct {
	Number int
	// Resume starts playback once the item is ready.
	Resume bool
	// Restart replays the item even when it is already loaded.
	Restart    bool
	Generation uint64
}
