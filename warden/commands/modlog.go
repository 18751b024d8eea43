package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/utils"

	"github.com/disgoorg/disgo/discord"
)

// postModLog mirrors every lifecycle event into the configured mod-log
// channel. Best effort: a missing channel or a failed send never fails the
// command that triggered it.
func postModLog(b *warden.Bot, title string, color int, inf *models.Infraction) {
	if b.Cfg.Moderation.ModLogChannel == 0 {
		return
	}

	embed := discord.Embed{
		Title:       title,
		Description: summaryLine(inf),
		Color:       color,
		Fields: []discord.EmbedField{
			{Name: "Actor", Value: fmt.Sprintf("<@%s>", inf.ActorID)},
			{Name: "Duration", Value: utils.HumanizeDuration(inf.Duration)},
		},
		Timestamp: timePtr(time.Now()),
	}

	if _, err := b.Client.Rest().CreateMessage(b.Cfg.Moderation.ModLogChannel, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
	}); err != nil {
		slog.Warn("Failed to post to mod-log channel",
			slog.String("type", "mod"),
			slog.Int64("infraction_id", inf.ID),
			slog.Any("error", err))
	}
}

func modLogApplied(b *warden.Bot, inf *models.Infraction) {
	postModLog(b, fmt.Sprintf("Infraction applied: %s", inf.Type), config.InfractionColor, inf)
}

func modLogPardoned(b *warden.Bot, inf *models.Infraction) {
	postModLog(b, fmt.Sprintf("Infraction pardoned: %s", inf.Type), config.PardonColor, inf)
}

func modLogRemoved(b *warden.Bot, inf *models.Infraction) {
	postModLog(b, fmt.Sprintf("Infraction removed: %s", inf.Type), config.EmbedDefaultColor, inf)
}

// modLogForbidden flags enforcement failures where the record exists but the
// platform action did not go through, so an operator can follow up by hand.
func modLogForbidden(b *warden.Bot, inf *models.Infraction) {
	postModLog(b, fmt.Sprintf("Enforcement failed: %s (recorded, not applied)", inf.Type), config.ErrorColor, inf)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
