package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wardenbot/warden/warden/config"

	"github.com/disgoorg/disgo/handler"
)

const commandTimeout = 15 * time.Second

// WrapWithLogging wraps a command handler with start/finish logging and a
// hard timeout. Moderation commands hit the platform API several times, so
// the deadline is generous but not unbounded.
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()

		slog.Info("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
			slog.String("channel_id", e.ChannelID().String()),
		)

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			duration := time.Since(start)

			attrs := []any{
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.Duration("took", duration),
			}

			if err != nil {
				slog.Error("Command failed", append(attrs,
					slog.Any("error", err),
					slog.String("status", "failed"),
				)...)
			} else if duration > 2*time.Second {
				slog.Warn("Command executed slowly", append(attrs,
					slog.String("status", "slow"),
				)...)
			} else {
				slog.Info("Command completed", append(attrs,
					slog.String("status", "success"),
				)...)
			}
			return err

		case <-time.After(commandTimeout):
			slog.Error("Command timed out",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.Duration("timeout", commandTimeout),
			)
			return fmt.Errorf("command %s timed out after %s", name, commandTimeout)
		}
	}
}

// WrapAutocompleteWithLogging keeps autocomplete failures out of the
// interaction path: errors are logged and swallowed so the client just sees
// an empty suggestion list. The deadline is short because Discord discards
// late suggestion responses anyway.
func WrapAutocompleteWithLogging(name string, h handler.AutocompleteHandler) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			if err != nil {
				slog.Error("Autocomplete failed",
					slog.String("type", "cmd"),
					slog.String("name", name),
					slog.String("user_id", e.User().ID.String()),
					slog.Any("error", err))
			}
		case <-time.After(config.AutocompleteTimeout):
			slog.Warn("Autocomplete timed out",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.Duration("timeout", config.AutocompleteTimeout))
		}
		return nil
	}
}
