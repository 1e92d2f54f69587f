// Package gate decides whether the caller may advance to a verse.
package gate

import (
	"context"
	"fmt"
)

// Identity is the caller as seen by the external auth store.
type Identity struct {
	Subject  string
	Verified bool
}

// IdentityProvider probes the external auth store. A nil identity means
// the caller is anonymous.
type IdentityProvider interface {
	CallerIdentity() *Identity
}

// IdentityFunc adapts a function to IdentityProvider.
type IdentityFunc func() *Identity

// CallerIdentity implements IdentityProvider.
func (f IdentityFunc) CallerIdentity() *Identity { return f() }

// Redirect carries enough context to resume at the same point once the
// external identity step completes.
type Redirect struct {
	CollectionID int
	ItemNumber   int
	Reason       string
}

func (r Redirect) String() string {
	return fmt.Sprintf("%d:%d (%s)", r.CollectionID, r.ItemNumber, r.Reason)
}

// Redirector hands navigation off to the external identity flow.
type Redirector interface {
	RequestIdentityThenResume(ctx context.Context, r Redirect) error
}

// Decision is the outcome of CanAdvanceTo. Redirect is set only on denial.
type Decision struct {
	Allowed  bool
	Redirect *Redirect
}

// ReasonSignIn is the redirect reason for anonymous callers past the preview.
const ReasonSignIn = "sign-in required"

// Gate allows anonymous callers up to a preview threshold.
// A threshold of zero disables gating.
type Gate struct {
	threshold int
	identity  IdentityProvider
}

// New creates a gate. identity may be nil, in which case every caller is anonymous.
func New(threshold int, identity IdentityProvider) *Gate {
	return &Gate{threshold: threshold, identity: identity}
}

// CanAdvanceTo reports whether the caller may move to itemNumber.
func (g *Gate) CanAdvanceTo(collectionID, itemNumber int) Decision {
	if g.threshold <= 0 || itemNumber <= g.threshold || g.verified() {
		return Decision{Allowed: true}
	}
	return Decision{
		Redirect: &Redirect{
			CollectionID: collectionID,
			ItemNumber:   itemNumber,
			Reason:       ReasonSignIn,
		},
	}
}

func (g *Gate) verified() bool {
	if g.identity == nil {
		return false
	}
	id := g.identity.CallerIdentity()
	return id != nil && id.Verified
}
