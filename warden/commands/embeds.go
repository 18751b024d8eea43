package commands

import (
	"errors"
	"fmt"

	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/moderation"
	"github.com/wardenbot/warden/warden/utils"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

func updateError(e *handler.CommandEvent, title, description string) error {
	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{{
			Title:       "❌ " + title,
			Description: description,
			Color:       config.ErrorColor,
		}},
	})
	return err
}

func updateWarning(e *handler.CommandEvent, title, description string) error {
	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{{
			Title:       "⚠️ " + title,
			Description: description,
			Color:       config.WarningColor,
		}},
	})
	return err
}

func updateEmbed(e *handler.CommandEvent, embed discord.Embed) error {
	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{embed},
	})
	return err
}

// summaryLine renders one infraction the way the history listing and the
// mod-log both show it.
func summaryLine(inf *models.Infraction) string {
	status := "resolved"
	if inf.Active {
		status = "active"
	}
	return fmt.Sprintf("`#%d` **%s** (%s) <@%s> • %s • <t:%d:R>\n%s",
		inf.ID,
		inf.Type,
		status,
		inf.UserID,
		utils.HumanizeDuration(inf.Duration),
		inf.CreatedAt.Unix(),
		reasonOrDefault(inf.Reason))
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "*no reason given*"
	}
	return reason
}

// renderApplyError maps every Apply failure mode onto its own embed so a
// moderator can tell a policy rejection from a permission problem.
func renderApplyError(e *handler.CommandEvent, err error) error {
	var conflict *moderation.ConflictError
	var enforcement *moderation.EnforcementError

	switch {
	case errors.Is(err, models.ErrDurationRequired), errors.Is(err, models.ErrInvalidDuration):
		return updateError(e, "Invalid Duration",
			"That duration is not valid for this infraction type.")

	case errors.Is(err, moderation.ErrPolicyRejected):
		return updateError(e, "Not Allowed",
			"You cannot act on this user. Check that the target is not the bot and that your top role is above theirs.")

	case errors.Is(err, moderation.ErrActionInProgress):
		return updateWarning(e, "Action In Progress",
			"Another moderation action for this user is still running. Try again in a moment.")

	case errors.As(err, &conflict):
		return updateWarning(e, "Already Covered",
			fmt.Sprintf("An active **%s** already covers this user for at least as long:\n\n%s",
				conflict.Existing.Type, summaryLine(conflict.Existing)))

	case errors.As(err, &enforcement):
		if enforcement.Forbidden {
			return updateError(e, "Missing Permissions",
				fmt.Sprintf("Infraction `#%d` was **recorded**, but Discord refused the %s. Check the bot's role position and permissions.",
					enforcement.Infraction.ID, enforcement.Infraction.Type))
		}
		return updateError(e, "Discord Error",
			fmt.Sprintf("Infraction `#%d` was **recorded**, but the %s could not be carried out: %v",
				enforcement.Infraction.ID, enforcement.Infraction.Type, enforcement.Err))

	case errors.Is(err, repositories.ErrInfractionNotFound):
		return updateError(e, "Not Found", "No infraction with that id exists.")

	default:
		return updateError(e, "Command Failed", err.Error())
	}
}
