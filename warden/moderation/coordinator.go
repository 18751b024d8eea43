package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
)

const expiryTimeout = 30 * time.Second

// ApplyRequest describes a new disciplinary action. Duration is in seconds:
// 0 for instant infractions (warn, kick), models.PermanentDuration for
// permanent ones.
type ApplyRequest struct {
	Actor    UserRef
	Target   UserRef
	Type     models.InfractionType
	Reason   string
	Duration int64
}

type ApplyResult struct {
	Infraction *models.Infraction
	Notified   bool
}

// PardonOutcome describes what a pardon actually did: whether the platform
// effect was lifted, or only the record was closed because a longer
// infraction of the same type still governs the effect.
type PardonOutcome struct {
	Infraction *models.Infraction
	Reversed   bool
	RecordOnly bool
	ReverseErr error
	Notified   bool
}

// Coordinator is the only component that invokes platform enforcement
// actions and the sole writer of infraction activation transitions.
type Coordinator struct {
	store     repositories.InfractionRepository
	enforcer  Enforcer
	authority AuthorityChecker
	notifier  Notifier
	scheduler *Scheduler

	mu       sync.Mutex
	inflight map[string]struct{}

	now func() time.Time
}

func NewCoordinator(
	store repositories.InfractionRepository,
	enforcer Enforcer,
	authority AuthorityChecker,
	notifier Notifier,
	scheduler *Scheduler,
) *Coordinator {
	c := &Coordinator{
		store:     store,
		enforcer:  enforcer,
		authority: authority,
		notifier:  notifier,
		scheduler: scheduler,
		inflight:  make(map[string]struct{}),
		now:       time.Now,
	}
	scheduler.OnExpire(c.handleExpiry)
	return c
}

// Apply validates, persists, and enforces a new infraction.
//
// A failed platform action does not roll the record back: the infraction
// stays persisted as an audit trail and the failure is reported through an
// EnforcementError carrying the record.
func (c *Coordinator) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if !c.authority.CanAct(req.Actor, req.Target) {
		return nil, ErrPolicyRejected
	}

	targetID := req.Target.ID.String()
	if !c.beginAction(targetID) {
		return nil, ErrActionInProgress
	}
	defer c.endAction(targetID)

	infraction, err := models.NewInfraction(
		targetID,
		req.Actor.ID.String(),
		req.Type,
		req.Reason,
		c.now(),
		req.Duration,
	)
	if err != nil {
		return nil, err
	}

	if conflict, err := c.findConflict(ctx, infraction); err != nil {
		return nil, err
	} else if conflict != nil {
		return nil, &ConflictError{Existing: conflict}
	}

	if err := c.store.Create(ctx, infraction); err != nil {
		return nil, err
	}

	if err := c.enforcer.Enforce(ctx, infraction); err != nil {
		enfErr := &EnforcementError{
			Infraction: infraction,
			Forbidden:  IsForbidden(err),
			Err:        err,
		}
		slog.Warn("Failed to apply infraction on platform",
			slog.String("type", "mod"),
			slog.Int64("infraction_id", infraction.ID),
			slog.String("infraction_type", string(infraction.Type)),
			slog.String("user_id", infraction.UserID),
			slog.Bool("forbidden", enfErr.Forbidden),
			slog.Any("error", err))
		return nil, enfErr
	}

	c.scheduler.Track(infraction)
	notified := c.notifier.NotifyApplied(ctx, infraction)

	slog.Info("Applied infraction",
		slog.String("type", "mod"),
		slog.Int64("infraction_id", infraction.ID),
		slog.String("infraction_type", string(infraction.Type)),
		slog.String("user_id", infraction.UserID),
		slog.String("actor_id", infraction.ActorID),
		slog.Int64("duration", infraction.Duration),
		slog.Bool("notified", notified))

	return &ApplyResult{Infraction: infraction, Notified: notified}, nil
}

// findConflict applies the longest-wins rule: the new infraction is
// rejected when an existing active one of the same type extends at least as
// far into the future (or is permanent).
func (c *Coordinator) findConflict(ctx context.Context, infraction *models.Infraction) (*models.Infraction, error) {
	active := true
	existing, err := c.store.GetByUser(ctx, infraction.UserID, repositories.InfractionFilter{
		Type:   &infraction.Type,
		Active: &active,
	})
	if err != nil {
		return nil, err
	}

	now := c.now()
	for _, other := range existing {
		if other.IsCurrentlyActive(now) && other.Outlasts(infraction) {
			return other, nil
		}
	}
	return nil, nil
}

// Pardon prematurely ends an active infraction. The platform effect is only
// reversed when no longer active infraction of the same type governs it;
// either way this record is closed and its timer cancelled. A failed
// reversal is reported in the outcome but never leaves the record active.
func (c *Coordinator) Pardon(ctx context.Context, infraction *models.Infraction) (*PardonOutcome, error) {
	if !infraction.Active {
		return nil, ErrNotActive
	}

	outcome := &PardonOutcome{Infraction: infraction}

	governed, err := c.governedByLonger(ctx, infraction)
	if err != nil {
		return nil, err
	}

	if governed {
		outcome.RecordOnly = true
		slog.Info("Pardon kept platform effect in place",
			slog.String("type", "mod"),
			slog.Int64("infraction_id", infraction.ID),
			slog.String("infraction_type", string(infraction.Type)),
			slog.String("user_id", infraction.UserID))
	} else if !infraction.IsInstant() {
		if err := c.enforcer.Reverse(ctx, infraction); err != nil {
			outcome.ReverseErr = err
			slog.Warn("Failed to reverse infraction on platform",
				slog.String("type", "mod"),
				slog.Int64("infraction_id", infraction.ID),
				slog.String("infraction_type", string(infraction.Type)),
				slog.String("user_id", infraction.UserID),
				slog.Bool("forbidden", IsForbidden(err)),
				slog.Any("error", err))
		} else {
			outcome.Reversed = true
		}
	}

	if err := c.store.SetInactive(ctx, infraction.ID); err != nil {
		return nil, err
	}
	infraction.Active = false
	infraction.DeactivatedAt = c.now()
	c.scheduler.Cancel(infraction.ID)

	outcome.Notified = c.notifier.NotifyPardoned(ctx, infraction)

	slog.Info("Pardoned infraction",
		slog.String("type", "mod"),
		slog.Int64("infraction_id", infraction.ID),
		slog.String("infraction_type", string(infraction.Type)),
		slog.String("user_id", infraction.UserID),
		slog.Bool("reversed", outcome.Reversed),
		slog.Bool("record_only", outcome.RecordOnly))

	return outcome, nil
}

// governedByLonger reports whether another active infraction of the same
// (user, type) extends strictly further than this one, in which case the
// platform effect must stay.
func (c *Coordinator) governedByLonger(ctx context.Context, infraction *models.Infraction) (bool, error) {
	active := true
	siblings, err := c.store.GetByUser(ctx, infraction.UserID, repositories.InfractionFilter{
		Type:   &infraction.Type,
		Active: &active,
	})
	if err != nil {
		return false, err
	}

	now := c.now()
	for _, other := range siblings {
		if other.ID == infraction.ID || !other.IsCurrentlyActive(now) {
			continue
		}
		if other.Outlasts(infraction) && !infraction.Outlasts(other) {
			return true, nil
		}
	}
	return false, nil
}

// Remove pardons the infraction if still active, then hard-deletes it.
// Removing an already removed id reports ErrInfractionNotFound.
func (c *Coordinator) Remove(ctx context.Context, infractionID int64) (*models.Infraction, error) {
	infraction, err := c.store.GetByID(ctx, infractionID)
	if err != nil {
		return nil, err
	}

	if infraction.Active {
		if _, err := c.Pardon(ctx, infraction); err != nil && !errors.Is(err, ErrNotActive) {
			return nil, fmt.Errorf("failed to pardon before removal: %w", err)
		}
	}

	if err := c.store.Delete(ctx, infractionID); err != nil {
		return nil, err
	}

	slog.Info("Removed infraction",
		slog.String("type", "mod"),
		slog.Int64("infraction_id", infractionID),
		slog.String("infraction_type", string(infraction.Type)),
		slog.String("user_id", infraction.UserID))

	return infraction, nil
}

// handleExpiry is the scheduler's deactivation entry point. The record is
// reloaded from the store first: the registry is only a cache, and a pardon
// may have already resolved the infraction while the timer was in flight.
func (c *Coordinator) handleExpiry(infractionID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), expiryTimeout)
	defer cancel()

	infraction, err := c.store.GetByID(ctx, infractionID)
	if err != nil {
		slog.Error("Failed to load infraction for expiry",
			slog.String("type", "mod"),
			slog.Int64("infraction_id", infractionID),
			slog.Any("error", err))
		return
	}

	if !infraction.Active {
		return
	}

	if _, err := c.Pardon(ctx, infraction); err != nil && !errors.Is(err, ErrNotActive) {
		slog.Error("Failed to deactivate expired infraction",
			slog.String("type", "mod"),
			slog.Int64("infraction_id", infractionID),
			slog.Any("error", err))
		return
	}

	slog.Info("Infraction expired",
		slog.String("type", "mod"),
		slog.Int64("infraction_id", infractionID),
		slog.String("infraction_type", string(infraction.Type)),
		slog.String("user_id", infraction.UserID))
}

func (c *Coordinator) beginAction(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[userID]; busy {
		return false
	}
	c.inflight[userID] = struct{}{}
	return true
}

func (c *Coordinator) endAction(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, userID)
}
