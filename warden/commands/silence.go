package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/moderation"
	"github.com/wardenbot/warden/warden/utils"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

const defaultSilenceDuration = 10 * time.Minute

var Silence = discord.SlashCommandCreate{
	Name:        "silence",
	Description: "🤫 Stop guests from speaking in this channel",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "How long to silence, e.g. 10m; \"permanent\" for no expiry (default 10m)",
			Required:    false,
		},
	},
}

var Unsilence = discord.SlashCommandCreate{
	Name:        "unsilence",
	Description: "🔊 Let guests speak in this channel again",
}

func SilenceHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		duration := defaultSilenceDuration
		if raw, ok := e.SlashCommandInteractionData().OptString("duration"); ok {
			seconds, err := utils.ParseDuration(raw)
			if err != nil {
				return e.CreateMessage(discord.MessageCreate{
					Embeds: []discord.Embed{{
						Description: fmt.Sprintf("Could not parse duration: %v", err),
						Color:       config.ErrorColor,
					}},
					Flags: discord.MessageFlagEphemeral,
				})
			}
			duration = time.Duration(seconds) * time.Second
			if seconds == models.PermanentDuration {
				duration = 0
			}
		}

		channelID := e.ChannelID()
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Silencer.Silence(ctx, channelID, duration); err != nil {
			if errors.Is(err, moderation.ErrAlreadySilenced) {
				return e.CreateMessage(discord.MessageCreate{
					Embeds: []discord.Embed{{
						Description: "This channel is already silenced.",
						Color:       config.WarningColor,
					}},
					Flags: discord.MessageFlagEphemeral,
				})
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: fmt.Sprintf("Failed to silence this channel: %v", err),
					Color:       config.ErrorColor,
				}},
				Flags: discord.MessageFlagEphemeral,
			})
		}

		until := "until `/unsilence`"
		if duration > 0 {
			until = fmt.Sprintf("for %s", utils.HumanizeDuration(int64(duration/time.Second)))
		}
		modLogChannelEvent(b, "Channel silenced",
			fmt.Sprintf("<#%s> silenced %s by <@%s>.", channelID, until, e.User().ID))

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "Channel Silenced",
				Description: fmt.Sprintf("Guests cannot speak here %s.", until),
				Color:       config.InfoColor,
			}},
		})
	}
}

func UnsilenceHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		channelID := e.ChannelID()
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Silencer.Unsilence(ctx, channelID); err != nil {
			if errors.Is(err, moderation.ErrNotSilenced) {
				return e.CreateMessage(discord.MessageCreate{
					Embeds: []discord.Embed{{
						Description: "This channel is not silenced.",
						Color:       config.WarningColor,
					}},
					Flags: discord.MessageFlagEphemeral,
				})
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: fmt.Sprintf("Failed to unsilence this channel: %v", err),
					Color:       config.ErrorColor,
				}},
				Flags: discord.MessageFlagEphemeral,
			})
		}

		modLogChannelEvent(b, "Channel unsilenced",
			fmt.Sprintf("<#%s> unsilenced by <@%s>.", channelID, e.User().ID))

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "Channel Unsilenced",
				Description: "Guests can speak here again.",
				Color:       config.SuccessColor,
			}},
		})
	}
}

// modLogChannelEvent mirrors channel-level moderation events (which carry no
// infraction record) into the mod-log channel. Best effort, like postModLog.
func modLogChannelEvent(b *warden.Bot, title, description string) {
	if b.Cfg.Moderation.ModLogChannel == 0 {
		return
	}

	if _, err := b.Client.Rest().CreateMessage(b.Cfg.Moderation.ModLogChannel, discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       title,
			Description: description,
			Color:       config.InfoColor,
			Timestamp:   timePtr(time.Now()),
		}},
	}); err != nil {
		slog.Warn("Failed to post to mod-log channel",
			slog.String("type", "mod"),
			slog.Any("error", err))
	}
}
