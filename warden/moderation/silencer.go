package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

const restoreTimeout = 15 * time.Second

// silencedPermissions are the bits stripped from the gated role while a
// channel is silenced.
const silencedPermissions = discord.PermissionSendMessages |
	discord.PermissionSendMessagesInThreads |
	discord.PermissionAddReactions

// RoleOverwrite is the saved permission state of the gated role in one
// channel, captured before silencing so it can be put back afterwards.
// Existed is false when the channel carried no overwrite for the role at
// all, in which case restoring means deleting ours.
type RoleOverwrite struct {
	Allow   discord.Permissions
	Deny    discord.Permissions
	Existed bool
}

// ChannelGate reads and writes the gated role's permission overwrite on a
// channel. Split out so the silencer's bookkeeping is testable without a
// gateway connection.
type ChannelGate interface {
	Overwrite(channelID snowflake.ID) (RoleOverwrite, error)
	Apply(ctx context.Context, channelID snowflake.ID, allow, deny discord.Permissions) error
	Clear(ctx context.Context, channelID snowflake.ID) error
}

type discordChannelGate struct {
	client bot.Client
	roleID snowflake.ID
}

func NewDiscordChannelGate(client bot.Client, roleID snowflake.ID) ChannelGate {
	return &discordChannelGate{client: client, roleID: roleID}
}

func (g *discordChannelGate) Overwrite(channelID snowflake.ID) (RoleOverwrite, error) {
	channel, ok := g.client.Caches().Channel(channelID)
	if !ok {
		return RoleOverwrite{}, fmt.Errorf("channel %s not in cache", channelID)
	}

	overwrite, ok := channel.PermissionOverwrites().Role(g.roleID)
	if !ok {
		return RoleOverwrite{}, nil
	}
	return RoleOverwrite{Allow: overwrite.Allow, Deny: overwrite.Deny, Existed: true}, nil
}

func (g *discordChannelGate) Apply(ctx context.Context, channelID snowflake.ID, allow, deny discord.Permissions) error {
	return g.client.Rest().UpdatePermissionOverwrite(channelID, g.roleID, discord.RolePermissionOverwriteUpdate{
		Allow: &allow,
		Deny:  &deny,
	}, rest.WithCtx(ctx))
}

func (g *discordChannelGate) Clear(ctx context.Context, channelID snowflake.ID) error {
	return g.client.Rest().DeletePermissionOverwrite(channelID, g.roleID, rest.WithCtx(ctx))
}

type silencedChannel struct {
	saved RoleOverwrite
	timer *time.Timer
}

// Silencer holds channels shut by denying the gated role its speaking
// permissions, optionally lifting the gate again after a timeout. State is
// in memory only: a restart drops pending timers, and any channel still
// silenced must be reopened by hand with /unsilence.
type Silencer struct {
	gate ChannelGate

	mu       sync.Mutex
	channels map[snowflake.ID]*silencedChannel
}

func NewSilencer(gate ChannelGate) *Silencer {
	return &Silencer{
		gate:     gate,
		channels: make(map[snowflake.ID]*silencedChannel),
	}
}

// Silence shuts the channel for the gated role. A zero duration silences
// indefinitely. The previous overwrite is captured first so Unsilence can
// put it back exactly; a channel this silencer already holds is rejected
// without touching the platform.
func (s *Silencer) Silence(ctx context.Context, channelID snowflake.ID, duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.channels[channelID]; held {
		return ErrAlreadySilenced
	}

	saved, err := s.gate.Overwrite(channelID)
	if err != nil {
		return err
	}

	allow := saved.Allow &^ silencedPermissions
	deny := saved.Deny | silencedPermissions
	if err := s.gate.Apply(ctx, channelID, allow, deny); err != nil {
		return err
	}

	entry := &silencedChannel{saved: saved}
	if duration > 0 {
		entry.timer = time.AfterFunc(duration, func() {
			s.expire(channelID)
		})
	}
	s.channels[channelID] = entry

	slog.Info("Silenced channel",
		slog.String("type", "mod"),
		slog.String("channel_id", channelID.String()),
		slog.Duration("duration", duration))
	return nil
}

// Unsilence reopens the channel by restoring the overwrite captured at
// silence time, or deleting ours when the role had none. On a failed
// restore the channel stays held so the command can simply be retried.
func (s *Silencer) Unsilence(ctx context.Context, channelID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.release(ctx, channelID)
}

func (s *Silencer) release(ctx context.Context, channelID snowflake.ID) error {
	entry, held := s.channels[channelID]
	if !held {
		return ErrNotSilenced
	}

	if entry.timer != nil {
		entry.timer.Stop()
		entry.timer = nil
	}

	var err error
	if entry.saved.Existed {
		err = s.gate.Apply(ctx, channelID, entry.saved.Allow, entry.saved.Deny)
	} else {
		err = s.gate.Clear(ctx, channelID)
	}
	if err != nil {
		return err
	}

	delete(s.channels, channelID)
	slog.Info("Unsilenced channel",
		slog.String("type", "mod"),
		slog.String("channel_id", channelID.String()))
	return nil
}

func (s *Silencer) expire(channelID snowflake.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	// ErrNotSilenced means a manual unsilence won the race with the timer.
	if err := s.release(ctx, channelID); err != nil && !errors.Is(err, ErrNotSilenced) {
		slog.Error("Failed to reopen channel after silence timeout",
			slog.String("type", "mod"),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}
}

// Silenced reports whether this silencer currently holds the channel.
func (s *Silencer) Silenced(channelID snowflake.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, held := s.channels[channelID]
	return held
}

// Shutdown stops all pending timers without touching channel permissions.
func (s *Silencer) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.channels {
		if entry.timer != nil {
			entry.timer.Stop()
			entry.timer = nil
		}
	}
}
