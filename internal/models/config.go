package models

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type HistoryConfig struct {
	Backend  string         `mapstructure:"backend"` // "sqlite" or "postgres"
	Path     string         `mapstructure:"path"`    // sqlite file, defaults under the user config dir
	Database DatabaseConfig `mapstructure:"database"`
}

type EventsConfig struct {
	Sink            string `mapstructure:"sink"` // "console", "file" or "kafka"
	FilePath        string `mapstructure:"file_path"`
	Topic           string `mapstructure:"topic"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`
}

type ExportConfig struct {
	Format      string `mapstructure:"format"`      // "json", "csv" or "parquet"
	Destination string `mapstructure:"destination"` // "local" or "s3"
	OutputPath  string `mapstructure:"output_path"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
}

type AuthConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type Config struct {
	BackendURL  string        `mapstructure:"backend_url"`
	ChatTimeout time.Duration `mapstructure:"chat_timeout"`
	Offline     bool          `mapstructure:"offline"`
	Seed        int64         `mapstructure:"seed"`
	Auth        AuthConfig    `mapstructure:"auth"`
	History     HistoryConfig `mapstructure:"history"`
	Events      EventsConfig  `mapstructure:"events"`
	Export      ExportConfig  `mapstructure:"export"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".labelscan")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("labelscan")
	viper.AutomaticEnv()

	viper.SetDefault("backend_url", "http://localhost:8000")
	viper.SetDefault("chat_timeout", "45s")
	viper.SetDefault("history.backend", "sqlite")
	viper.SetDefault("events.sink", "console")
	viper.SetDefault("events.topic", "scan_events")
	viper.SetDefault("events.kafka_broker_list", "localhost:9092")
	viper.SetDefault("export.format", "json")
	viper.SetDefault("export.destination", "local")
	viper.SetDefault("seed", 42)

	// a missing config file is fine, defaults and flags cover everything
	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if config.History.Path == "" {
		path, err := DefaultHistoryPath()
		if err != nil {
			return nil, err
		}
		config.History.Path = path
	}

	return &config, nil
}

const (
	appDirName      = "labelscan"
	historyDBName   = "history.db"
	sessionFileName = "session.json"
	profileFileName = "profile.json"
)

// DefaultHistoryPath returns the sqlite history location under the
// platform user config dir.
func DefaultHistoryPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, historyDBName), nil
}

// DefaultSessionPath returns where the signed-in session is stored.
func DefaultSessionPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, sessionFileName), nil
}

// DefaultProfilePath returns where the local copy of the user profile
// is stored.
func DefaultProfilePath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, profileFileName), nil
}

func EnsureParentDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	return nil
}
