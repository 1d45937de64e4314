// Package config loads process configuration from the environment, an optional
// .env file and an optional bots.yaml file.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrMissingMongoURI = errors.New("MONGO_URI not found in .env or environment variables")

const (
	DefaultDatabaseName = "customBots"
	DefaultLogLevel     = "info"
	DefaultLogFile      = ".discord.log"
	DefaultBotsFile     = "bots.yaml"
)

// Config is read once at startup and never changes afterwards.
type Config struct {
	MongoURI     string
	DatabaseName string
	LogLevel     string
	LogFile      string
	BotsFile     string

	// MasterOwner is an owner of every bot in addition to the one registered
	// with the bot.
	MasterOwner int64
	// AllCogs replaces the "~" cog wildcard. Empty means every built-in cog.
	AllCogs []string
}

type botsFile struct {
	MasterOwner int64    `yaml:"master_owner"`
	AllCogs     []string `yaml:"all_cogs"`
}

// Load reads envFile into the process environment when it exists and then
// builds the Config from environment variables.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", envFile)
		}
	}
	return FromVariables(environ())
}

// FromVariables builds a Config from a key/value map.
func FromVariables(vars map[string]string) (*Config, error) {
	c := &Config{
		MongoURI:     strings.TrimSpace(vars["MONGO_URI"]),
		DatabaseName: valueOr(vars, "MONGO_DATABASE", DefaultDatabaseName),
		LogLevel:     valueOr(vars, "LOG_LEVEL", DefaultLogLevel),
		LogFile:      valueOr(vars, "LOG_FILE", DefaultLogFile),
		BotsFile:     valueOr(vars, "BOTS_FILE", DefaultBotsFile),
	}
	if c.MongoURI == "" {
		return nil, ErrMissingMongoURI
	}
	if err := c.loadBotsFile(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) loadBotsFile() error {
	data, err := os.ReadFile(c.BotsFile)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "read %s", c.BotsFile)
	}

	var f botsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return errors.Wrapf(err, "parse %s", c.BotsFile)
	}
	c.MasterOwner = f.MasterOwner
	c.AllCogs = f.AllCogs
	return nil
}

func valueOr(vars map[string]string, key, fallback string) string {
	if value := strings.TrimSpace(vars[key]); value != "" {
		return value
	}
	return fallback
}

func environ() map[string]string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			vars[key] = value
		}
	}
	return vars
}
