package access

import (
	"time"

	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/musicals"
	"musical-catalog/internal/domain/users"
)

const (
	msgSignIn         = "Please sign in to continue"
	msgAdminRequired  = "Admin access required"
	msgNotAvailable   = "You do not have access to this musical"
	msgUnreleasedList = "You do not have access to unreleased musicals"
)

// Policy authorizes reads and writes against the catalog. It is a pure
// function of its inputs and the clock.
type Policy struct {
	unreleased VisibilityRule
	now        func() time.Time
}

// NewPolicy builds a policy. A nil clock means time.Now.
func NewPolicy(rule VisibilityRule, now func() time.Time) Policy {
	if rule == nil {
		rule = AnyAuthenticated
	}
	if now == nil {
		now = time.Now
	}
	return Policy{unreleased: rule, now: now}
}

// Now is the evaluation time used for release classification.
func (p Policy) Now() time.Time {
	return p.now()
}

// CanWrite reports whether id may create, update or delete musicals.
func (p Policy) CanWrite(id *users.Identity) bool {
	return id.IsAdmin()
}

// AuthorizeWrite returns Unauthenticated for anonymous callers and
// Forbidden for signed-in non-admins.
func (p Policy) AuthorizeWrite(id *users.Identity) error {
	if !id.Authenticated() {
		return apperr.Unauthenticated(msgSignIn)
	}
	if !p.CanWrite(id) {
		return apperr.Forbidden(msgAdminRequired)
	}
	return nil
}

// CanReadEntry allows released musicals to everyone and unreleased ones
// only to identities passing the visibility rule.
func (p Policy) CanReadEntry(id *users.Identity, m musicals.Musical, now time.Time) bool {
	if !m.Unreleased(now) {
		return true
	}
	return p.unreleased(id)
}

// AuthorizeRead returns Forbidden when m is hidden from id. The message is
// the same whatever the reason, so it says nothing about release status.
func (p Policy) AuthorizeRead(id *users.Identity, m musicals.Musical, now time.Time) error {
	if !p.CanReadEntry(id, m, now) {
		return apperr.Forbidden(msgNotAvailable)
	}
	return nil
}

func (p Policy) CanListUnreleased(id *users.Identity) bool {
	return p.unreleased(id)
}

// AuthorizeListUnreleased gates a list request that asked for unreleased
// musicals. It fails the request instead of filtering silently.
func (p Policy) AuthorizeListUnreleased(id *users.Identity) error {
	if p.CanListUnreleased(id) {
		return nil
	}
	if !id.Authenticated() {
		return apperr.Unauthenticated(msgSignIn)
	}
	return apperr.Forbidden(msgUnreleasedList)
}
