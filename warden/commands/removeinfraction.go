package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/repositories"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var RemoveInfraction = discord.SlashCommandCreate{
	Name:        "removeinfraction",
	Description: "🗑️ Delete an infraction record entirely",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "id",
			Description: "The infraction id to remove",
			Required:    true,
		},
	},
}

func RemoveInfractionHandler(b *warden.Bot) handler.CommandHandler {
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

		inf, err := b.Coordinator.Remove(ctx, id)
		if errors.Is(err, repositories.ErrInfractionNotFound) {
			return updateError(e, "Not Found", fmt.Sprintf("No infraction `#%d` exists.", id))
		}
		if err != nil {
			return updateError(e, "Command Failed", err.Error())
		}

		modLogRemoved(b, inf)
		return updateEmbed(e, discord.Embed{
			Title:       fmt.Sprintf("Removed %s `#%d`", inf.Type, id),
			Description: "The record was pardoned if still active and has been deleted.",
			Color:       config.EmbedDefaultColor,
		})
	}
}
