package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anonymous() *Identity { return nil }

func TestCanAdvanceTo(t *testing.T) {
	verified := IdentityFunc(func() *Identity { return &Identity{Subject: "u1", Verified: true} })
	unverified := IdentityFunc(func() *Identity { return &Identity{Subject: "u2"} })

	tests := []struct {
		name      string
		threshold int
		identity  IdentityProvider
		item      int
		allowed   bool
	}{
		{"anonymous within preview", 5, IdentityFunc(anonymous), 5, true},
		{"anonymous past preview", 5, IdentityFunc(anonymous), 6, false},
		{"nil provider past preview", 5, nil, 7, false},
		{"verified past preview", 5, verified, 200, true},
		{"unverified counts as anonymous", 5, unverified, 6, false},
		{"zero threshold disables gate", 0, nil, 286, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.threshold, tt.identity)
			d := g.CanAdvanceTo(2, tt.item)
			assert.Equal(t, tt.allowed, d.Allowed)
			if tt.allowed {
				assert.Nil(t, d.Redirect)
			}
		})
	}
}

func TestCanAdvanceTo_RedirectCarriesResumePoint(t *testing.T) {
	g := New(5, nil)

	d := g.CanAdvanceTo(18, 6)

	require.False(t, d.Allowed)
	require.NotNil(t, d.Redirect)
	assert.Equal(t, 18, d.Redirect.CollectionID)
	assert.Equal(t, 6, d.Redirect.ItemNumber)
	assert.Equal(t, ReasonSignIn, d.Redirect.Reason)
}

func TestCanAdvanceTo_ReadsIdentityEachTime(t *testing.T) {
	var id *Identity
	g := New(1, IdentityFunc(func() *Identity { return id }))

	assert.False(t, g.CanAdvanceTo(1, 2).Allowed)

	id = &Identity{Subject: "later", Verified: true}
	assert.True(t, g.CanAdvanceTo(1, 2).Allowed)
}
