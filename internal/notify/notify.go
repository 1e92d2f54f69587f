// Package notify sends desktop notifications for verse changes and sign-in
// requests.
package notify

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string
	Body       string
	Icon       string  // icon name or image path
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification
	Urgency    Urgency // Low, Normal, Critical
	Category   string
	// Link is opened when the notification is clicked.
	Link string
}

const (
	CategoryVerse  = "x-tilawa.verse"
	CategorySignIn = "x-tilawa.sign-in"
)

type options struct {
	open func(url string) error
}

// Option configures New.
type Option func(*options)

// WithOpener sets how a clicked notification's Link is opened.
func WithOpener(open func(url string) error) Option {
	return func(o *options) { o.open = open }
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are unavailable.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

const (
	verseTimeout  = 4000
	signInTimeout = 0
)

// Announcer turns player events into notifications. Verse notifications
// replace each other so only the latest one stays on screen.
type Announcer struct {
	mu        sync.Mutex
	n         Notifier
	surahName string
	lastID    uint32
	log       zerolog.Logger
}

// NewAnnouncer creates an announcer for a surah.
func NewAnnouncer(n Notifier, surahName string, log zerolog.Logger) *Announcer {
	return &Announcer{n: n, surahName: surahName, log: log}
}

// Verse announces that a verse started playing.
func (a *Announcer) Verse(surah, verse int, voice string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, err := a.n.Notify(VerseNotification(a.surahName, surah, verse, voice, a.lastID))
	if err != nil {
		a.log.Debug().Err(err).Msg("verse notification failed")
		return
	}
	a.lastID = id
}

// SignIn asks the user to complete sign-in at loginURL.
func (a *Announcer) SignIn(verse int, loginURL string) {
	if _, err := a.n.Notify(SignInNotification(verse, loginURL)); err != nil {
		a.log.Debug().Err(err).Msg("sign-in notification failed")
	}
}

// VerseNotification builds the "now reciting" notification.
func VerseNotification(surahName string, surah, verse int, voice string, replaces uint32) Notification {
	title := fmt.Sprintf("%d:%d", surah, verse)
	if surahName != "" {
		title = fmt.Sprintf("%s %d:%d", surahName, surah, verse)
	}
	return Notification{
		Title:      title,
		Body:       voice,
		Icon:       "audio-x-generic",
		Timeout:    verseTimeout,
		ReplacesID: replaces,
		Urgency:    UrgencyLow,
		Category:   CategoryVerse,
	}
}

// SignInNotification builds the notification shown when a verse past the
// preview needs an identity.
func SignInNotification(verse int, loginURL string) Notification {
	body := fmt.Sprintf("Sign in to continue from verse %d.", verse)
	if loginURL != "" {
		body += "\n" + loginURL
	}
	return Notification{
		Title:    "Sign-in required",
		Body:     body,
		Icon:     "dialog-password",
		Timeout:  signInTimeout,
		Urgency:  UrgencyCritical,
		Category: CategorySignIn,
		Link:     loginURL,
	}
}
