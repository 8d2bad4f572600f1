package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Database    DatabaseConfig    `toml:"database"`
	Persistence PersistenceConfig `toml:"persistence"`
	Scripting   ScriptingConfig   `toml:"scripting"`
	Data        DataConfig        `toml:"data"`
	Admin       AdminConfig       `toml:"admin"`
	Console     ConsoleConfig     `toml:"console"`
	Logging     LoggingConfig     `toml:"logging"`
}

type ServerConfig struct {
	Name               string        `toml:"name"`
	TickRate           time.Duration `toml:"tick_rate"`
	QueueSize          int           `toml:"queue_size"`            // pending command requests
	MaxCommandsPerTick int           `toml:"max_commands_per_tick"` // 0 = drain everything
	StartTime          int64         // set at boot, not from config
}

type StorageConfig struct {
	Backend      string `toml:"backend"`        // "file" or "postgres"
	Root         string `toml:"root"`           // per-world data directory (file backend)
	LegacyIDFile string `toml:"legacy_id_file"` // historical {"id": ...} JSON, read once
	Format       string `toml:"format"`         // "bson" or "yaml"
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type PersistenceConfig struct {
	SaveInterval time.Duration `toml:"save_interval"`
	FlushTimeout time.Duration `toml:"flush_timeout"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type DataConfig struct {
	Palette string `toml:"palette"` // team color palette YAML
}

type AdminConfig struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
}

type ConsoleConfig struct {
	Enabled bool `toml:"enabled"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file":
		if c.Storage.Root == "" {
			return fmt.Errorf("storage.root is required for the file backend")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	switch c.Storage.Format {
	case "bson", "yaml":
	default:
		return fmt.Errorf("unknown storage.format %q", c.Storage.Format)
	}
	if c.Server.TickRate <= 0 {
		return fmt.Errorf("server.tick_rate must be positive")
	}
	if c.Server.QueueSize <= 0 {
		return fmt.Errorf("server.queue_size must be positive")
	}
	if c.Persistence.SaveInterval < c.Server.TickRate {
		return fmt.Errorf("persistence.save_interval must be at least one tick")
	}
	return nil
}

// SaveIntervalTicks converts the save interval to game-loop ticks.
func (c *Config) SaveIntervalTicks() int {
	return int(c.Persistence.SaveInterval / c.Server.TickRate)
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:               "teamsd",
			TickRate:           200 * time.Millisecond,
			QueueSize:          256,
			MaxCommandsPerTick: 64,
		},
		Storage: StorageConfig{
			Backend:      "file",
			Root:         "world/teams",
			LegacyIDFile: "world/data/info.json",
			Format:       "bson",
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Persistence: PersistenceConfig{
			SaveInterval: time.Minute,
			FlushTimeout: 10 * time.Second,
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Data: DataConfig{
			Palette: "data/yaml/team_colors.yaml",
		},
		Admin: AdminConfig{
			Enabled:     true,
			BindAddress: "127.0.0.1:7080",
		},
		Console: ConsoleConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
