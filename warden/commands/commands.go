package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	Warn,
	Kick,
	Mute,
	Ban,
	Tempban,
	Unban,
	Pardon,
	Infractions,
	RemoveInfraction,
	Silence,
	Unsilence,
	Version,
}
