package warden

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log        LogConfig        `toml:"log"`
	Bot        BotConfig        `toml:"bot"`
	DB         DBConfig         `toml:"db"`
	Moderation ModerationConfig `toml:"moderation"`
	Archive    ArchiveConfig    `toml:"archive"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type ModerationConfig struct {
	GuildID       snowflake.ID   `toml:"guild_id"`
	MutedRoleID   snowflake.ID   `toml:"muted_role_id"`
	GuestRoleID   snowflake.ID   `toml:"guest_role_id"`
	ModLogChannel snowflake.ID   `toml:"mod_log_channel"`
	StaffChannels []snowflake.ID `toml:"staff_channels"`
}

// ArchiveConfig configures the periodic export of resolved infractions
// to S3-compatible object storage. Disabled when Bucket is empty.
type ArchiveConfig struct {
	Key           string `toml:"key"`
	Secret        string `toml:"secret"`
	Region        string `toml:"region"`
	Bucket        string `toml:"bucket"`
	Prefix        string `toml:"prefix"`
	IntervalHours int    `toml:"interval_hours"`
}
