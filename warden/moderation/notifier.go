package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/utils"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

const (
	colorSoftRed   = 0xcd6d6d
	colorSoftGreen = 0x68c290
)

// Notifier delivers best-effort DMs about infractions. A false return means
// the user could not be reached; failures never propagate.
type Notifier interface {
	NotifyApplied(ctx context.Context, infraction *models.Infraction) bool
	NotifyPardoned(ctx context.Context, infraction *models.Infraction) bool
}

type dmNotifier struct {
	client bot.Client
}

func NewDMNotifier(client bot.Client) Notifier {
	return &dmNotifier{client: client}
}

func (n *dmNotifier) NotifyApplied(ctx context.Context, infraction *models.Infraction) bool {
	expires := "N/A"
	if !infraction.IsInstant() {
		expires = utils.HumanizeDuration(infraction.Duration)
	}
	reason := infraction.Reason
	if reason == "" {
		reason = "No reason provided."
	}

	embed := discord.Embed{
		Description: fmt.Sprintf(
			"**Type:** %s\n**Expires:** %s\n**Reason:** %s",
			displayName(infraction.Type), expires, reason,
		),
		Color: colorSoftRed,
	}
	embed.Author = &discord.EmbedAuthor{Name: "Infraction information"}

	return n.send(ctx, infraction.UserID, embed)
}

// displayName capitalizes a type name for embed text. The known names are
// plain ASCII, so no case-folding library is needed.
func displayName(typ models.InfractionType) string {
	s := string(typ)
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

func (n *dmNotifier) NotifyPardoned(ctx context.Context, infraction *models.Infraction) bool {
	embed := discord.Embed{
		Description: fmt.Sprintf("Your **%s** infraction has been pardoned.", infraction.Type),
		Color:       colorSoftGreen,
	}
	embed.Author = &discord.EmbedAuthor{Name: "Infraction pardoned"}

	return n.send(ctx, infraction.UserID, embed)
}

func (n *dmNotifier) send(ctx context.Context, rawUserID string, embed discord.Embed) bool {
	userID, err := snowflake.Parse(rawUserID)
	if err != nil {
		return false
	}

	channel, err := n.client.Rest().CreateDMChannel(userID, rest.WithCtx(ctx))
	if err == nil {
		_, err = n.client.Rest().CreateMessage(channel.ID(), discord.MessageCreate{
			Embeds: []discord.Embed{embed},
		}, rest.WithCtx(ctx))
	}
	if err != nil {
		// The user left, blocks DMs, or disabled them; nothing to do.
		slog.Debug("Infraction DM could not be delivered",
			slog.String("type", "mod"),
			slog.String("user_id", rawUserID),
			slog.Any("error", err))
		return false
	}
	return true
}
