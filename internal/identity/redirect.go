package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tilawa/internal/gate"
)

// ErrNoLoginURL is returned when no sign-in page is configured.
var ErrNoLoginURL = errors.New("identity: login url is not configured")

// ResumeStore remembers where to continue after sign-in.
type ResumeStore interface {
	SaveResume(r gate.Redirect) error
}

// Opener presents the sign-in URL to the user.
type Opener func(ctx context.Context, loginURL string) error

// Redirector implements gate.Redirector: it records the resume intent and
// opens the sign-in page.
type Redirector struct {
	loginURL string
	store    ResumeStore
	open     Opener
	log      zerolog.Logger
}

// NewRedirector creates a redirector. store and open may be nil.
func NewRedirector(loginURL string, store ResumeStore, open Opener, log zerolog.Logger) *Redirector {
	return &Redirector{
		loginURL: loginURL,
		store:    store,
		open:     open,
		log:      log.With().Str("component", "identity").Logger(),
	}
}

// RequestIdentityThenResume saves r and opens the sign-in page with the
// resume point in its query string.
func (d *Redirector) RequestIdentityThenResume(ctx context.Context, r gate.Redirect) error {
	if d.store != nil {
		if err := d.store.SaveResume(r); err != nil {
			return fmt.Errorf("save resume intent: %w", err)
		}
	}
	u, err := LoginURL(d.loginURL, r)
	if err != nil {
		return err
	}
	d.log.Info().Int("surah", r.CollectionID).Int("verse", r.ItemNumber).Msg("sign-in requested")
	if d.open == nil {
		return nil
	}
	return d.open(ctx, u)
}

// LoginURL adds the resume point to base.
func LoginURL(base string, r gate.Redirect) (string, error) {
	if base == "" {
		return "", ErrNoLoginURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("identity: parse login url: %w", err)
	}
	q := u.Query()
	q.Set("surah", strconv.Itoa(r.CollectionID))
	q.Set("verse", strconv.Itoa(r.ItemNumber))
	if r.Reason != "" {
		q.Set("reason", r.Reason)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var _ gate.Redirector = (*Redirector)(nil)
