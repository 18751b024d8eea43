package commands

import (
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

// requireStaffChannel rejects moderation commands issued outside the
// configured staff channels. An empty list disables the restriction.
// Returns true when the command may proceed.
func requireStaffChannel(b *warden.Bot, e *handler.CommandEvent) (bool, error) {
	if len(b.Cfg.Moderation.StaffChannels) == 0 {
		return true, nil
	}

	channelID := e.ChannelID()
	for _, staff := range b.Cfg.Moderation.StaffChannels {
		if staff == channelID {
			return true, nil
		}
	}

	return false, e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: "Moderation commands can only be used in staff channels.",
			Color:       config.WarningColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}
