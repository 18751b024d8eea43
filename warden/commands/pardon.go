package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/moderation"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Pardon = discord.SlashCommandCreate{
	Name:        "pardon",
	Description: "🕊️ Pardon an infraction by id",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "id",
			Description: "The infraction id to pardon",
			Required:    true,
		},
	},
}

var Unban = discord.SlashCommandCreate{
	Name:        "unban",
	Description: "🔓 Lift all active bans for a user",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to unban",
			Required:    true,
		},
	},
}

func PardonHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if ok, err := requireStaffChannel(b, e); !ok {
			return err
		}
		if err := e.DeferCreateMessage(false); err != nil {
			return fmt.Errorf("failed to defer response: %w", err)
		}

		id := int64(e.SlashCommandInteractionData().Int("id"))

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		inf, err := b.Infractions.GetByID(ctx, id)
		if errors.Is(err, repositories.ErrInfractionNotFound) {
			return updateError(e, "Not Found", fmt.Sprintf("No infraction `#%d` exists.", id))
		}
		if err != nil {
			return updateError(e, "Command Failed", err.Error())
		}

		outcome, err := b.Coordinator.Pardon(ctx, inf)
		if errors.Is(err, moderation.ErrNotActive) {
			return updateWarning(e, "Already Resolved",
				fmt.Sprintf("Infraction `#%d` is no longer active.", id))
		}
		if err != nil {
			return updateError(e, "Command Failed", err.Error())
		}

		modLogPardoned(b, inf)
		return updateEmbed(e, pardonEmbed(outcome))
	}
}

func UnbanHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if ok, err := requireStaffChannel(b, e); !ok {
			return err
		}
		if err := e.DeferCreateMessage(false); err != nil {
			return fmt.Errorf("failed to defer response: %w", err)
		}

		target := e.SlashCommandInteractionData().User("user")

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		banType := models.InfractionTypeBan
		active := true
		bans, err := b.Infractions.GetByUser(ctx, target.ID.String(), repositories.InfractionFilter{
			Type:   &banType,
			Active: &active,
		})
		if err != nil {
			return updateError(e, "Command Failed", err.Error())
		}
		if len(bans) == 0 {
			return updateWarning(e, "Not Banned",
				fmt.Sprintf("%s has no active ban on record.", target.Username))
		}

		// Pardon shortest first so the governing ban is resolved last and
		// its pardon is the one that actually lifts the platform ban.
		var last *moderation.PardonOutcome
		for _, ban := range orderByEnd(bans) {
			outcome, err := b.Coordinator.Pardon(ctx, ban)
			if errors.Is(err, moderation.ErrNotActive) {
				continue
			}
			if err != nil {
				return updateError(e, "Command Failed", err.Error())
			}
			modLogPardoned(b, ban)
			last = outcome
		}
		if last == nil {
			return updateWarning(e, "Not Banned",
				fmt.Sprintf("%s has no active ban on record.", target.Username))
		}

		return updateEmbed(e, pardonEmbed(last))
	}
}

// orderByEnd sorts ascending by effective end, permanents last.
func orderByEnd(infractions []*models.Infraction) []*models.Infraction {
	sorted := make([]*models.Infraction, len(infractions))
	copy(sorted, infractions)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Outlasts(sorted[j]); j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted
}

func pardonEmbed(outcome *moderation.PardonOutcome) discord.Embed {
	inf := outcome.Infraction

	description := summaryLine(inf)
	switch {
	case outcome.ReverseErr != nil:
		description += "\n\n⚠️ The record was closed, but lifting the effect on Discord failed. Check the bot's permissions."
	case outcome.RecordOnly:
		description += "\n\n⚠️ A longer infraction of the same type is still active, so the effect stays in place."
	}

	footer := "User was notified by DM."
	if !outcome.Notified {
		footer = "User could not be notified."
	}

	return discord.Embed{
		Title:       fmt.Sprintf("Pardoned %s `#%d`", inf.Type, inf.ID),
		Description: description,
		Color:       config.PardonColor,
		Footer:      &discord.EmbedFooter{Text: footer},
	}
}
