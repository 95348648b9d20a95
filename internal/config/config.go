// Package config provides Viper-based configuration loading for the dice bot.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
	BackendMemory   = "memory"
)

// StorageConfig selects where variables and accounts are kept.
type StorageConfig struct {
	// Backend is one of "postgres", "bolt", or "memory".
	Backend string `mapstructure:"backend"`
	// BoltPath is the database file used by the bolt backend.
	BoltPath string `mapstructure:"bolt_path"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelnetConfig holds Telnet chat listener settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// TLSCertFile and TLSKeyFile enable TLS when both are set. Connections
	// served over TLS count as encrypted.
	TLSCertFile string `mapstructure:"tls_cert_file"`
	TLSKeyFile  string `mapstructure:"tls_key_file"`
	// MaxConnections caps concurrent sessions; further clients are told the
	// server is full and disconnected. Zero means no limit.
	MaxConnections int `mapstructure:"max_connections"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// TLSEnabled reports whether a certificate and key are configured.
func (t TelnetConfig) TLSEnabled() bool {
	return t.TLSCertFile != "" && t.TLSKeyFile != ""
}

// ChatConfig holds chat room settings.
type ChatConfig struct {
	// RoomsFile is the YAML room catalogue.
	RoomsFile string `mapstructure:"rooms_file"`
	// DefaultRoom is the room new connections join.
	DefaultRoom string `mapstructure:"default_room"`
	// OutboxSize is the number of undelivered lines buffered per connection.
	OutboxSize int `mapstructure:"outbox_size"`
	// EventBuffer is the capacity of the channel feeding the bot.
	EventBuffer int `mapstructure:"event_buffer"`
}

// BotConfig holds command-processing settings.
type BotConfig struct {
	// DisplayName is the sender name on bot replies.
	DisplayName string `mapstructure:"display_name"`
	// OldMessageWindow is how far before startup a message may have been sent
	// and still be answered.
	OldMessageWindow time.Duration `mapstructure:"old_message_window"`
	// CommandTimeout bounds a single command, including storage calls.
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	// MaxConcurrent caps commands processed at once.
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Bot      BotConfig      `mapstructure:"bot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the postgres backend is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateTelnet(c.Telnet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateChat(c.Chat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBot(c.Bot); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case BackendPostgres, BackendMemory:
		return nil
	case BackendBolt:
		if s.BoltPath == "" {
			return errors.New("storage.bolt_path must not be empty for the bolt backend")
		}
		return nil
	}
	return fmt.Errorf("storage.backend must be one of [postgres, bolt, memory], got %q", s.Backend)
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if t.MaxConnections < 0 {
		errs = append(errs, "telnet.max_connections must not be negative")
	}
	if (t.TLSCertFile == "") != (t.TLSKeyFile == "") {
		errs = append(errs, "telnet.tls_cert_file and telnet.tls_key_file must be set together")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateChat(c ChatConfig) error {
	var errs []string
	if c.RoomsFile == "" {
		errs = append(errs, "chat.rooms_file must not be empty")
	}
	if c.DefaultRoom == "" {
		errs = append(errs, "chat.default_room must not be empty")
	}
	if c.OutboxSize < 1 {
		errs = append(errs, fmt.Sprintf("chat.outbox_size must be >= 1, got %d", c.OutboxSize))
	}
	if c.EventBuffer < 1 {
		errs = append(errs, fmt.Sprintf("chat.event_buffer must be >= 1, got %d", c.EventBuffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBot(b BotConfig) error {
	var errs []string
	if b.DisplayName == "" {
		errs = append(errs, "bot.display_name must not be empty")
	}
	if b.OldMessageWindow < 0 {
		errs = append(errs, "bot.old_message_window must not be negative")
	}
	if b.CommandTimeout <= 0 {
		errs = append(errs, "bot.command_timeout must be positive")
	}
	if b.MaxConcurrent < 1 {
		errs = append(errs, fmt.Sprintf("bot.max_concurrent must be >= 1, got %d", b.MaxConcurrent))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DICEBOT_ prefix
	v.SetEnvPrefix("DICEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the built-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendBolt)
	v.SetDefault("storage.bolt_path", "dicebot.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dicebot")
	v.SetDefault("database.password", "dicebot")
	v.SetDefault("database.name", "dicebot")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "30m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.tls_cert_file", "")
	v.SetDefault("telnet.tls_key_file", "")
	v.SetDefault("telnet.max_connections", 256)

	v.SetDefault("chat.rooms_file", "configs/rooms.yaml")
	v.SetDefault("chat.default_room", "lobby")
	v.SetDefault("chat.outbox_size", 64)
	v.SetDefault("chat.event_buffer", 256)

	v.SetDefault("bot.display_name", "dicebot")
	v.SetDefault("bot.old_message_window", "1m")
	v.SetDefault("bot.command_timeout", "10s")
	v.SetDefault("bot.max_concurrent", 16)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
