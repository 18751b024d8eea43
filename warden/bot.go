package warden

import (
	"context"
	"log/slog"
	"time"

	"github.com/wardenbot/warden/warden/database"
	"github.com/wardenbot/warden/warden/database/repositories"
	"github.com/wardenbot/warden/warden/moderation"
	"github.com/wardenbot/warden/warden/services"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg         Config
	Client      bot.Client
	Paginator   *paginator.Manager
	Version     string
	Commit      string
	DB          *database.DB
	Infractions repositories.InfractionRepository
	Scheduler   *moderation.Scheduler
	Coordinator *moderation.Coordinator
	Silencer    *moderation.Silencer
	Archive     *services.ArchiveService
}

// SetupModeration wires the infraction pipeline on top of an established
// client and database. Must run before OnReady fires so that the reconcile
// pass sees the full registry.
func (b *Bot) SetupModeration() {
	b.Infractions = repositories.NewInfractionRepository(b.DB.BunDB())
	b.Scheduler = moderation.NewScheduler(b.Infractions)
	b.Coordinator = moderation.NewCoordinator(
		b.Infractions,
		moderation.NewDiscordEnforcer(b.Client, b.Cfg.Moderation.GuildID, b.Cfg.Moderation.MutedRoleID),
		moderation.NewHierarchyChecker(b.Client, b.Cfg.Moderation.GuildID),
		moderation.NewDMNotifier(b.Client),
		b.Scheduler,
	)
	b.Silencer = moderation.NewSilencer(
		moderation.NewDiscordChannelGate(b.Client, b.Cfg.Moderation.GuestRoleID),
	)
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMembers, gateway.IntentGuildModeration)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds, cache.FlagChannels, cache.FlagMembers, cache.FlagRoles)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Warden is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Rebuild expiry timers before any command can touch the registry.
	if err := b.Scheduler.Reconcile(ctx); err != nil {
		slog.Error("Failed to reschedule infraction expirations", slog.Any("error", err))
	}

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("the server"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
