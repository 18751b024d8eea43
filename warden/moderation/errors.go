package moderation

import (
	"errors"
	"fmt"

	"github.com/wardenbot/warden/warden/database/models"
)

var (
	// ErrPolicyRejected signals a precondition failure on the caller's
	// side: the target is the bot itself, or the actor lacks authority
	// over the target.
	ErrPolicyRejected = errors.New("target cannot be acted on")

	// ErrNotActive signals a pardon attempt against an infraction that
	// has already been resolved.
	ErrNotActive = errors.New("infraction is not active")

	// ErrActionInProgress signals that another moderation action for the
	// same target is currently being applied by this coordinator.
	ErrActionInProgress = errors.New("another action for this user is in progress")

	// ErrAlreadySilenced signals a silence attempt on a channel this
	// silencer already holds shut.
	ErrAlreadySilenced = errors.New("channel is already silenced")

	// ErrNotSilenced signals an unsilence attempt on a channel this
	// silencer does not hold.
	ErrNotSilenced = errors.New("channel is not silenced")
)

// ConflictError is returned by Apply when an existing active infraction of
// the same type already extends at least as far into the future as the
// requested one (longest-wins).
type ConflictError struct {
	Existing *models.Infraction
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting active %s infraction #%d", e.Existing.Type, e.Existing.ID)
}

// EnforcementError reports a failed platform-side action. The infraction
// record is persisted regardless, as an audit trail for follow-up.
type EnforcementError struct {
	Infraction *models.Infraction
	Forbidden  bool
	Err        error
}

func (e *EnforcementError) Error() string {
	if e.Forbidden {
		return fmt.Sprintf("enforcement of %s infraction #%d forbidden: %v", e.Infraction.Type, e.Infraction.ID, e.Err)
	}
	return fmt.Sprintf("enforcement of %s infraction #%d failed: %v", e.Infraction.Type, e.Infraction.ID, e.Err)
}

func (e *EnforcementError) Unwrap() error {
	return e.Err
}
