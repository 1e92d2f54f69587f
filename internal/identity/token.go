// Package identity reads the caller's identity from a token file written by
// the external sign-in flow, and hands denied navigation off to that flow.
package identity

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tilawa/internal/gate"
)

// token is the on-disk format.
type token struct {
	Subject   string    `json:"subject"`
	Verified  bool      `json:"verified"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenFile implements gate.IdentityProvider over a JSON token file. The
// file is re-read only when its modification time changes.
type TokenFile struct {
	path string
	now  func() time.Time
	log  zerolog.Logger

	mu      sync.Mutex
	modTime time.Time
	cached  *token
}

// NewTokenFile creates a provider for path. An empty path means the caller
// is always anonymous.
func NewTokenFile(path string, log zerolog.Logger) *TokenFile {
	return &TokenFile{
		path: path,
		now:  time.Now,
		log:  log.With().Str("component", "identity").Logger(),
	}
}

// CallerIdentity returns the identity in the token file, or nil when the
// file is missing, unreadable or expired.
func (f *TokenFile) CallerIdentity() *gate.Identity {
	if f.path == "" {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	info, err := os.Stat(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.log.Warn().Err(err).Msg("stat token file")
		}
		f.cached = nil
		f.modTime = time.Time{}
		return nil
	}
	if !info.ModTime().Equal(f.modTime) {
		f.cached = f.read()
		f.modTime = info.ModTime()
	}

	t := f.cached
	if t == nil || t.Subject == "" {
		return nil
	}
	if !t.ExpiresAt.IsZero() && !f.now().Before(t.ExpiresAt) {
		return nil
	}
	return &gate.Identity{Subject: t.Subject, Verified: t.Verified}
}

func (f *TokenFile) read() *token {
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.log.Warn().Err(err).Msg("read token file")
		return nil
	}
	var t token
	if err := json.Unmarshal(data, &t); err != nil {
		f.log.Warn().Err(err).Msg("parse token file")
		return nil
	}
	return &t
}

var _ gate.IdentityProvider = (*TokenFile)(nil)
