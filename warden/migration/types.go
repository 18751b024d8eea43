package migration

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wardenbot/warden/warden/database/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// legacyInfraction mirrors the document shape of the previous bot. Expiry
// was stored as an absolute timestamp (nil meaning "never"), not a duration.
type legacyInfraction struct {
	ID         primitive.ObjectID `bson:"_id"`
	UserID     int64              `bson:"user"`
	ActorID    int64              `bson:"actor"`
	Type       string             `bson:"type"`
	Reason     string             `bson:"reason"`
	InsertedAt time.Time          `bson:"inserted_at"`
	ExpiresAt  *time.Time         `bson:"expires_at"`
	Active     bool               `bson:"active"`
}

func (d legacyInfraction) convert() (*models.Infraction, error) {
	typ := models.InfractionType(d.Type)
	if !typ.Valid() {
		return nil, fmt.Errorf("unknown legacy type %q", d.Type)
	}
	if d.InsertedAt.IsZero() {
		return nil, fmt.Errorf("missing inserted_at")
	}

	duration := legacyDuration(typ, d.InsertedAt, d.ExpiresAt)

	infraction, err := models.NewInfraction(
		strconv.FormatInt(d.UserID, 10),
		strconv.FormatInt(d.ActorID, 10),
		typ,
		d.Reason,
		d.InsertedAt.UTC(),
		duration,
	)
	if err != nil {
		return nil, err
	}

	// The legacy flag wins over the derived one: records the old bot
	// already resolved stay resolved even when the window says otherwise.
	infraction.Active = infraction.Active && d.Active
	return infraction, nil
}

// legacyDuration maps the old absolute-expiry model onto seconds. Warn and
// kick are always instant regardless of any stray expiry the old bot stored;
// no expiry on a mute or ban means permanent.
func legacyDuration(typ models.InfractionType, insertedAt time.Time, expiresAt *time.Time) int64 {
	if typ.Instant() {
		return 0
	}
	if expiresAt == nil {
		return models.PermanentDuration
	}

	seconds := int64(expiresAt.Sub(insertedAt) / time.Second)
	if seconds < 1 {
		// The old bot stored a handful of already-expired windows; a
		// one-second window keeps them importable as resolved records.
		return 1
	}
	return seconds
}
