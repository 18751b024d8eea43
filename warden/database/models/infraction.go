package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// PermanentDuration is the sentinel duration (in seconds) standing in for
// "forever". Large enough to outlive anyone, finite so date arithmetic and
// comparisons stay trivial. It is never fed to a timer.
const PermanentDuration int64 = 1_000_000_000

type InfractionType string

const (
	InfractionTypeWarn InfractionType = "warn"
	InfractionTypeKick InfractionType = "kick"
	InfractionTypeMute InfractionType = "mute"
	InfractionTypeBan  InfractionType = "ban"
)

// InfractionTypes lists every recognized kind, in escalation order.
var InfractionTypes = []InfractionType{
	InfractionTypeWarn,
	InfractionTypeKick,
	InfractionTypeMute,
	InfractionTypeBan,
}

// Valid reports whether the type is one of the recognized kinds.
func (t InfractionType) Valid() bool {
	switch t {
	case InfractionTypeWarn, InfractionTypeKick, InfractionTypeMute, InfractionTypeBan:
		return true
	}
	return false
}

// Instant reports whether the type is a one-shot action with no ongoing
// effect. Only these kinds may carry a zero duration; a zero-duration ban
// or mute would put an effect on the platform that no active record
// governs.
func (t InfractionType) Instant() bool {
	return t == InfractionTypeWarn || t == InfractionTypeKick
}

var (
	ErrInvalidType      = errors.New("unrecognized infraction type")
	ErrInvalidDuration  = errors.New("infraction duration not valid for this type")
	ErrDurationRequired = errors.New("this infraction type requires a non-zero duration")
	ErrInvalidCreatedAt = errors.New("infraction created_at must be set")
)

type Infraction struct {
	bun.BaseModel `bun:"table:infractions,alias:inf"`

	ID        int64          `bun:"id,pk,autoincrement"`
	UserID    string         `bun:"user_id,notnull"`
	ActorID   string         `bun:"actor_id,notnull"`
	Type      InfractionType `bun:"type,notnull"`
	Reason    string         `bun:"reason"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
	Duration  int64          `bun:"duration,notnull"`
	Active    bool           `bun:"active,notnull"`

	// Set when the active flag is cleared; the audit archive exports by
	// this timestamp, since long-lived infractions resolve far from their
	// creation time.
	DeactivatedAt time.Time `bun:"deactivated_at,nullzero"`
}

// NewInfraction validates and builds a record ready for insertion. Instant
// infractions (duration 0, used by warn and kick) carry no ongoing effect,
// so they are created inactive and never reach the scheduler.
func NewInfraction(userID, actorID string, typ InfractionType, reason string, createdAt time.Time, duration int64) (*Infraction, error) {
	if !typ.Valid() {
		return nil, ErrInvalidType
	}
	if duration < 0 {
		return nil, ErrInvalidDuration
	}
	if duration == 0 && !typ.Instant() {
		return nil, ErrDurationRequired
	}
	if duration != 0 && typ.Instant() {
		return nil, ErrInvalidDuration
	}
	if createdAt.IsZero() {
		return nil, ErrInvalidCreatedAt
	}

	return &Infraction{
		UserID:    userID,
		ActorID:   actorID,
		Type:      typ,
		Reason:    reason,
		CreatedAt: createdAt,
		Duration:  duration,
		Active:    duration != 0,
	}, nil
}

func (i *Infraction) IsPermanent() bool {
	return i.Duration == PermanentDuration
}

// IsInstant reports whether the infraction has no ongoing effect to track
// or reverse (warn, kick).
func (i *Infraction) IsInstant() bool {
	return i.Duration == 0
}

// ExpiresAt is meaningless for permanent and instant infractions; callers
// must check IsPermanent/IsInstant first.
func (i *Infraction) ExpiresAt() time.Time {
	return i.CreatedAt.Add(time.Duration(i.Duration) * time.Second)
}

// IsActiveAt is the pure time check: permanent infractions never lapse,
// everything else lapses at ExpiresAt. It ignores the persisted Active flag.
func (i *Infraction) IsActiveAt(now time.Time) bool {
	if i.IsPermanent() {
		return true
	}
	return now.Before(i.ExpiresAt())
}

// IsCurrentlyActive combines the persisted flag with the time check.
func (i *Infraction) IsCurrentlyActive(now time.Time) bool {
	return i.Active && i.IsActiveAt(now)
}

// Outlasts reports whether this infraction's effect extends at least as far
// into the future as other's. Permanent outlasts everything, including
// another permanent.
func (i *Infraction) Outlasts(other *Infraction) bool {
	if i.IsPermanent() {
		return true
	}
	if other.IsPermanent() {
		return false
	}
	return !i.ExpiresAt().Before(other.ExpiresAt())
}
