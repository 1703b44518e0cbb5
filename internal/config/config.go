package config

import (
	"time"

	"github.com/vovakirdan/matchwire/internal/proto"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	SendBuffer        int           `mapstructure:"send_buffer" yaml:"send_buffer"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	HistoryDBPath     string        `mapstructure:"history_db_path" yaml:"history_db_path"`
	Roles             Roles         `mapstructure:"roles" yaml:"roles"`
	Events            Events        `mapstructure:"events" yaml:"events"`
}

// Roles holds the tokens announced to the first and second client of a match.
type Roles struct {
	First  string `mapstructure:"first" yaml:"first"`
	Second string `mapstructure:"second" yaml:"second"`
}

// Events configures publication of lifecycle events. Empty NATSURL disables it.
type Events struct {
	NATSURL string `mapstructure:"nats_url" yaml:"nats_url"`
	Subject string `mapstructure:"subject" yaml:"subject"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxMessageBytes:   1 << 20,
		SendBuffer:        32,
		LogLevel:          "info",
		Roles: Roles{
			First:  proto.RoleWhite,
			Second: proto.RoleBlack,
		},
		Events: Events{
			Subject: "matchwire.events",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.SendBuffer != 0 {
		c.SendBuffer = other.SendBuffer
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.HistoryDBPath != "" {
		c.HistoryDBPath = other.HistoryDBPath
	}
	if other.Roles.First != "" {
		c.Roles.First = other.Roles.First
	}
	if other.Roles.Second != "" {
		c.Roles.Second = other.Roles.Second
	}
	if other.Events.NATSURL != "" {
		c.Events.NATSURL = other.Events.NATSURL
	}
	if other.Events.Subject != "" {
		c.Events.Subject = other.Events.Subject
	}
}
