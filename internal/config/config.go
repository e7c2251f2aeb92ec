// Package config provides Viper-based configuration loading for the dungeon.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/engine"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/river"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/world"
)

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

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// WorldConfig holds generation and turn settings.
type WorldConfig struct {
	// Seed drives the seeded random source. Zero selects the crypto source.
	Seed             uint64 `mapstructure:"seed"`
	ChunkSide        int    `mapstructure:"chunk_side"`
	MinChunkSide     int    `mapstructure:"min_chunk_side"`
	MaxChunkSide     int    `mapstructure:"max_chunk_side"`
	RiverThreshold   int    `mapstructure:"river_threshold"`
	RiverMinGap      int    `mapstructure:"river_min_gap"`
	RiverMaxGap      int    `mapstructure:"river_max_gap"`
	BridgeMinGap     int    `mapstructure:"bridge_min_gap"`
	BridgeMaxGap     int    `mapstructure:"bridge_max_gap"`
	DayLengthSeconds int64  `mapstructure:"day_length_seconds"`
	TurnSeconds      int64  `mapstructure:"turn_seconds"`
	HeroAttack       int    `mapstructure:"hero_attack"`
}

// World converts the section into a world.Config.
func (w WorldConfig) World() world.Config {
	return world.Config{
		ChunkSide:        w.ChunkSide,
		MinChunkSide:     w.MinChunkSide,
		MaxChunkSide:     w.MaxChunkSide,
		DayLengthSeconds: w.DayLengthSeconds,
		River: river.Config{
			Threshold:    w.RiverThreshold,
			LineMinGap:   w.RiverMinGap,
			LineMaxGap:   w.RiverMaxGap,
			BridgeMinGap: w.BridgeMinGap,
			BridgeMaxGap: w.BridgeMaxGap,
		},
	}
}

// Engine converts the section into an engine.Config.
func (w WorldConfig) Engine() engine.Config {
	return engine.Config{TurnSeconds: w.TurnSeconds, HeroAttack: w.HeroAttack}
}

// ContentConfig names the YAML content directories.
type ContentConfig struct {
	LocationsDir string `mapstructure:"locations_dir"`
	CreaturesDir string `mapstructure:"creatures_dir"`
	ItemsDir     string `mapstructure:"items_dir"`
}

// Storage backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// StorageConfig selects where saved games live.
type StorageConfig struct {
	// Backend is one of "file", "sqlite", "postgres".
	Backend string `mapstructure:"backend"`
	// Dir is the snapshot directory of the file backend.
	Dir string `mapstructure:"dir"`
	// SQLitePath is the database file of the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	World    WorldConfig    `mapstructure:"world"`
	Content  ContentConfig  `mapstructure:"content"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWorld(c.World); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWorld(w WorldConfig) error {
	var errs []string
	if err := w.World().Validate(); err != nil {
		errs = append(errs, "world: "+err.Error())
	}
	if err := w.Engine().Validate(); err != nil {
		errs = append(errs, "world: "+err.Error())
	}
	if w.ChunkSide < 1 {
		errs = append(errs, fmt.Sprintf("world.chunk_side must be >= 1, got %d", w.ChunkSide))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.LocationsDir == "" {
		errs = append(errs, "content.locations_dir must not be empty")
	}
	if c.CreaturesDir == "" {
		errs = append(errs, "content.creatures_dir must not be empty")
	}
	if c.ItemsDir == "" {
		errs = append(errs, "content.items_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case BackendFile:
		if s.Dir == "" {
			return errors.New("storage.dir must not be empty for the file backend")
		}
	case BackendSQLite:
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite backend")
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("storage.backend must be one of [file, sqlite, postgres], got %q", s.Backend)
	}
	return nil
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

	// Environment variable overrides with DUNGEON_ prefix
	v.SetEnvPrefix("DUNGEON")
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

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	wd := world.DefaultConfig()
	ed := engine.DefaultConfig()
	v.SetDefault("world.seed", 0)
	v.SetDefault("world.chunk_side", wd.ChunkSide)
	v.SetDefault("world.min_chunk_side", wd.MinChunkSide)
	v.SetDefault("world.max_chunk_side", wd.MaxChunkSide)
	v.SetDefault("world.river_threshold", wd.River.Threshold)
	v.SetDefault("world.river_min_gap", wd.River.LineMinGap)
	v.SetDefault("world.river_max_gap", wd.River.LineMaxGap)
	v.SetDefault("world.bridge_min_gap", wd.River.BridgeMinGap)
	v.SetDefault("world.bridge_max_gap", wd.River.BridgeMaxGap)
	v.SetDefault("world.day_length_seconds", wd.DayLengthSeconds)
	v.SetDefault("world.turn_seconds", ed.TurnSeconds)
	v.SetDefault("world.hero_attack", ed.HeroAttack)

	v.SetDefault("content.locations_dir", "content/locations")
	v.SetDefault("content.creatures_dir", "content/creatures")
	v.SetDefault("content.items_dir", "content/items")

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", "saves")
	v.SetDefault("storage.sqlite_path", "saves/dungeon.sqlite")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dungeon")
	v.SetDefault("database.password", "dungeon")
	v.SetDefault("database.name", "dungeon")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
