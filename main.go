package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/commands"
	"github.com/wardenbot/warden/warden/database"
	"github.com/wardenbot/warden/warden/handlers"
	"github.com/wardenbot/warden/warden/logger"
	"github.com/wardenbot/warden/warden/services"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	slog.Info("Starting Warden",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := warden.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	b := warden.New(*cfg, version, commit)
	b.DB = db

	h := handler.New()

	h.Command("/version", commands.VersionHandler(b))

	// Moderation commands
	h.Command("/warn", handlers.WrapWithLogging("warn", commands.WarnHandler(b)))
	h.Command("/kick", handlers.WrapWithLogging("kick", commands.KickHandler(b)))
	h.Command("/mute", handlers.WrapWithLogging("mute", commands.MuteHandler(b)))
	h.Command("/ban", handlers.WrapWithLogging("ban", commands.BanHandler(b)))
	h.Command("/tempban", handlers.WrapWithLogging("tempban", commands.TempbanHandler(b)))
	h.Command("/unban", handlers.WrapWithLogging("unban", commands.UnbanHandler(b)))
	h.Command("/pardon", handlers.WrapWithLogging("pardon", commands.PardonHandler(b)))
	h.Command("/removeinfraction", handlers.WrapWithLogging("removeinfraction", commands.RemoveInfractionHandler(b)))
	h.Command("/infractions", handlers.WrapWithLogging("infractions", commands.InfractionsHandler(b)))
	h.Command("/silence", handlers.WrapWithLogging("silence", commands.SilenceHandler(b)))
	h.Command("/unsilence", handlers.WrapWithLogging("unsilence", commands.UnsilenceHandler(b)))
	h.Autocomplete("/infractions", handlers.WrapAutocompleteWithLogging("infractions", commands.InfractionsAutocomplete(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)))
		os.Exit(-1)
	}

	b.SetupModeration()

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Scheduler.Shutdown()
		b.Silencer.Shutdown()
		b.Client.Close(ctx)
	}()

	if cfg.Archive.Bucket != "" {
		interval := time.Duration(cfg.Archive.IntervalHours) * time.Hour
		if interval <= 0 {
			interval = 24 * time.Hour
		}
		archive, err := services.NewArchiveService(
			b.Infractions,
			cfg.Archive.Key,
			cfg.Archive.Secret,
			cfg.Archive.Region,
			cfg.Archive.Bucket,
			cfg.Archive.Prefix,
			interval,
		)
		if err != nil {
			slog.Error("Failed to initialize infraction archive", slog.Any("error", err))
			os.Exit(-1)
		}
		b.Archive = archive

		archiveCtx, archiveCancel := context.WithCancel(context.Background())
		defer archiveCancel()
		go archive.Run(archiveCtx)
		slog.Info("Infraction archive enabled",
			slog.String("bucket", cfg.Archive.Bucket),
			slog.Duration("interval", interval))
	}

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Warden is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down...")
}
