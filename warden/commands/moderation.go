package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/moderation"
	"github.com/wardenbot/warden/warden/utils"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Warn = discord.SlashCommandCreate{
	Name:        "warn",
	Description: "⚠️ Warn a user",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to warn",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the warning",
			Required:    false,
		},
	},
}

var Kick = discord.SlashCommandCreate{
	Name:        "kick",
	Description: "👢 Kick a user from the server",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to kick",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the kick",
			Required:    false,
		},
	},
}

var Ban = discord.SlashCommandCreate{
	Name:        "ban",
	Description: "🔨 Permanently ban a user",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to ban",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the ban",
			Required:    false,
		},
	},
}

var Tempban = discord.SlashCommandCreate{
	Name:        "tempban",
	Description: "⏳ Ban a user for a limited time",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to ban",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "How long the ban lasts, e.g. 3d2h or \"1 week\"",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the ban",
			Required:    false,
		},
	},
}

var Mute = discord.SlashCommandCreate{
	Name:        "mute",
	Description: "🔇 Mute a user",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to mute",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "How long the mute lasts; omit or \"permanent\" for no expiry",
			Required:    false,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the mute",
			Required:    false,
		},
	},
}

func WarnHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return runApply(b, e, models.InfractionTypeWarn, 0)
	}
}

func KickHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return runApply(b, e, models.InfractionTypeKick, 0)
	}
}

func BanHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return runApply(b, e, models.InfractionTypeBan, models.PermanentDuration)
	}
}

func TempbanHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		duration, err := utils.ParseDuration(e.SlashCommandInteractionData().String("duration"))
		if err != nil {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: fmt.Sprintf("Could not parse duration: %v", err),
					Color:       config.ErrorColor,
				}},
				Flags: discord.MessageFlagEphemeral,
			})
		}
		return runApply(b, e, models.InfractionTypeBan, duration)
	}
}

func MuteHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		duration := models.PermanentDuration
		if raw, ok := e.SlashCommandInteractionData().OptString("duration"); ok {
			parsed, err := utils.ParseDuration(raw)
			if err != nil {
				return e.CreateMessage(discord.MessageCreate{
					Embeds: []discord.Embed{{
						Description: fmt.Sprintf("Could not parse duration: %v", err),
						Color:       config.ErrorColor,
					}},
					Flags: discord.MessageFlagEphemeral,
				})
			}
			duration = parsed
		}
		return runApply(b, e, models.InfractionTypeMute, duration)
	}
}

func runApply(b *warden.Bot, e *handler.CommandEvent, typ models.InfractionType, duration int64) error {
	if ok, err := requireStaffChannel(b, e); !ok {
		return err
	}
	if err := e.DeferCreateMessage(false); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	data := e.SlashCommandInteractionData()
	target := data.User("user")
	reason := data.String("reason")

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	result, err := b.Coordinator.Apply(ctx, moderation.ApplyRequest{
		Actor:    moderation.ResolvedUser(e.User()),
		Target:   moderation.ResolvedUser(target),
		Type:     typ,
		Reason:   reason,
		Duration: duration,
	})
	if err != nil {
		var enforcement *moderation.EnforcementError
		if errors.As(err, &enforcement) && enforcement.Forbidden {
			modLogForbidden(b, enforcement.Infraction)
		}
		return renderApplyError(e, err)
	}

	inf := result.Infraction
	modLogApplied(b, inf)

	footer := "User was notified by DM."
	if !result.Notified {
		footer = "User could not be notified."
	}

	return updateEmbed(e, discord.Embed{
		Title:       fmt.Sprintf("Applied %s to %s", inf.Type, target.Username),
		Description: summaryLine(inf),
		Color:       config.InfractionColor,
		Footer:      &discord.EmbedFooter{Text: footer},
	})
}
