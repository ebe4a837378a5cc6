// Package session parses session command flags and composes the service
// entrypoint.
package session

import (
	"context"
	"flag"
	"fmt"
	"strings"

	entrypoint "github.com/louisbranch/crowdcue/internal/platform/cmd"
	server "github.com/louisbranch/crowdcue/internal/services/session/app"
)

// Config holds session command configuration.
type Config struct {
	HTTPAddr    string `env:"CROWDCUE_SESSION_HTTP_ADDR" envDefault:":8080"`
	Brokers     string `env:"CROWDCUE_KAFKA_BROKERS"     envDefault:"localhost:9092"`
	StoragePath string `env:"CROWDCUE_USERS_DB_PATH"     envDefault:"users.db"`
	TokenSecret string `env:"CROWDCUE_TOKEN_SECRET"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "session HTTP listen address")
	fs.StringVar(&cfg.Brokers, "brokers", cfg.Brokers, "comma-separated Kafka seed brokers")
	fs.StringVar(&cfg.StoragePath, "users-db", cfg.StoragePath, "user directory SQLite path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the session app and serves it.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSession, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:    cfg.HTTPAddr,
			Brokers:     strings.Split(cfg.Brokers, ","),
			StoragePath: cfg.StoragePath,
			TokenSecret: cfg.TokenSecret,
		}); err != nil {
			return fmt.Errorf("serve session: %w", err)
		}
		return nil
	})
}
