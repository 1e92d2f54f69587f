// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpVerseLoad     Op = "load verse"
	OpVerseSwitch   Op = "switch verse"
	OpVoiceChange   Op = "change reciter"

	// Catalog operations
	OpCatalogLoad Op = "load surah"

	// Preferences
	OpPrefsLoad Op = "load preferences"
	OpPrefsSave Op = "save preferences"

	// Identity
	OpIdentityHandoff Op = "start sign-in"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// TryAgain appends the retry affordance hint to a formatted message.
func TryAgain(msg string) string {
	if msg == "" {
		return ""
	}
	return msg + " (press t to try again)"
}
