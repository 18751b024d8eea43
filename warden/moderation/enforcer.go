package moderation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/wardenbot/warden/warden/database/models"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// Enforcer performs the platform-side effect of an infraction and its
// reversal. Implementations must keep Reverse idempotent: reversing an
// effect that is no longer present is a no-op, not an error.
type Enforcer interface {
	Enforce(ctx context.Context, infraction *models.Infraction) error
	Reverse(ctx context.Context, infraction *models.Infraction) error
}

type discordEnforcer struct {
	client      bot.Client
	guildID     snowflake.ID
	mutedRoleID snowflake.ID
}

func NewDiscordEnforcer(client bot.Client, guildID snowflake.ID, mutedRoleID snowflake.ID) Enforcer {
	return &discordEnforcer{
		client:      client,
		guildID:     guildID,
		mutedRoleID: mutedRoleID,
	}
}

func (e *discordEnforcer) Enforce(ctx context.Context, infraction *models.Infraction) error {
	userID, err := snowflake.Parse(infraction.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", infraction.UserID, err)
	}

	opts := []rest.RequestOpt{rest.WithCtx(ctx), rest.WithReason(infraction.Reason)}

	switch infraction.Type {
	case models.InfractionTypeWarn:
		// Warns have no platform-side effect.
		return nil
	case models.InfractionTypeKick:
		return e.client.Rest().RemoveMember(e.guildID, userID, opts...)
	case models.InfractionTypeBan:
		return e.client.Rest().AddBan(e.guildID, userID, 0, opts...)
	case models.InfractionTypeMute:
		return e.client.Rest().AddMemberRole(e.guildID, userID, e.mutedRoleID, opts...)
	default:
		return fmt.Errorf("no enforcement action for infraction type %q", infraction.Type)
	}
}

func (e *discordEnforcer) Reverse(ctx context.Context, infraction *models.Infraction) error {
	userID, err := snowflake.Parse(infraction.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", infraction.UserID, err)
	}

	opts := []rest.RequestOpt{rest.WithCtx(ctx), rest.WithReason("infraction expired or pardoned")}

	switch infraction.Type {
	case models.InfractionTypeWarn, models.InfractionTypeKick:
		// Instant infractions carry no ongoing effect.
		return nil
	case models.InfractionTypeBan:
		err = e.client.Rest().DeleteBan(e.guildID, userID, opts...)
	case models.InfractionTypeMute:
		err = e.client.Rest().RemoveMemberRole(e.guildID, userID, e.mutedRoleID, opts...)
	default:
		return fmt.Errorf("no reversal action for infraction type %q", infraction.Type)
	}

	// Unbanning a user who is not banned (or unmuting without the role)
	// comes back as 404; that is the idempotent no-op case.
	if isNotFound(err) {
		return nil
	}
	return err
}

// IsForbidden reports whether an enforcement call failed because the bot
// lacks the privilege (role hierarchy or missing permission).
func IsForbidden(err error) bool {
	var restErr rest.Error
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusForbidden
	}
	return false
}

func isNotFound(err error) bool {
	var restErr rest.Error
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
