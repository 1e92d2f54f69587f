package identity

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tilawa/internal/gate"
	"github.com/llehouerou/tilawa/internal/state"
)

func writeToken(t *testing.T, path, body string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestTokenFile_MissingIsAnonymous(t *testing.T) {
	f := NewTokenFile(filepath.Join(t.TempDir(), "token.json"), zerolog.Nop())
	assert.Nil(t, f.CallerIdentity())

	assert.Nil(t, NewTokenFile("", zerolog.Nop()).CallerIdentity())
}

func TestTokenFile_ReadsAndRefreshes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	f := NewTokenFile(path, zerolog.Nop())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	writeToken(t, path, `{"subject":"u1","verified":false}`, base)
	id := f.CallerIdentity()
	require.NotNil(t, id)
	assert.Equal(t, "u1", id.Subject)
	assert.False(t, id.Verified)

	writeToken(t, path, `{"subject":"u1","verified":true}`, base.Add(time.Minute))
	id = f.CallerIdentity()
	require.NotNil(t, id)
	assert.True(t, id.Verified)
}

func TestTokenFile_ExpiredOrInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	f := NewTokenFile(path, zerolog.Nop())
	f.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	writeToken(t, path, `{"subject":"u1","verified":true,"expires_at":"2026-05-01T00:00:00Z"}`, base)
	assert.Nil(t, f.CallerIdentity())

	writeToken(t, path, `not json`, base.Add(time.Minute))
	assert.Nil(t, f.CallerIdentity())

	writeToken(t, path, `{"subject":"u1","verified":true,"expires_at":"2026-07-01T00:00:00Z"}`, base.Add(2*time.Minute))
	assert.NotNil(t, f.CallerIdentity())
}

func TestTokenFile_UnlocksGate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	g := gate.New(5, NewTokenFile(path, zerolog.Nop()))

	assert.False(t, g.CanAdvanceTo(2, 6).Allowed)

	writeToken(t, path, `{"subject":"u1","verified":true}`, time.Now())
	assert.True(t, g.CanAdvanceTo(2, 6).Allowed)
}

func TestLoginURL(t *testing.T) {
	u, err := LoginURL("https://example.test/login?app=tilawa", gate.Redirect{CollectionID: 18, ItemNumber: 6, Reason: gate.ReasonSignIn})
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "tilawa", q.Get("app"))
	assert.Equal(t, "18", q.Get("surah"))
	assert.Equal(t, "6", q.Get("verse"))
	assert.Equal(t, gate.ReasonSignIn, q.Get("reason"))

	_, err = LoginURL("", gate.Redirect{})
	assert.ErrorIs(t, err, ErrNoLoginURL)
}

func TestRedirector_SavesResumeAndOpens(t *testing.T) {
	store := state.NewMock()
	var opened string
	open := func(_ context.Context, u string) error {
		opened = u
		return nil
	}
	d := NewRedirector("https://example.test/login", store, open, zerolog.Nop())
	r := gate.Redirect{CollectionID: 2, ItemNumber: 6, Reason: gate.ReasonSignIn}

	require.NoError(t, d.RequestIdentityThenResume(context.Background(), r))

	assert.Contains(t, opened, "verse=6")
	saved, err := store.TakeResume()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, r, *saved)
}

func TestRedirector_OpenFailure(t *testing.T) {
	boom := errors.New("no browser")
	d := NewRedirector("https://example.test/login", nil, func(context.Context, string) error { return boom }, zerolog.Nop())

	err := d.RequestIdentityThenResume(context.Background(), gate.Redirect{CollectionID: 1, ItemNumber: 9})

	assert.ErrorIs(t, err, boom)
}
