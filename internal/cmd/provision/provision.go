// Package provision parses provisioning flags and runs one-shot storage
// setup: open the user store, apply embedded migrations, exit.
package provision

import (
	"context"
	"flag"
	"fmt"
	"log"

	entrypoint "github.com/louisbranch/crowdcue/internal/platform/cmd"
	"github.com/louisbranch/crowdcue/internal/userdir/sqlite"
)

// Config holds provisioning command configuration.
type Config struct {
	StoragePath string `env:"CROWDCUE_USERS_DB_PATH" envDefault:"users.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.StoragePath, "users-db", cfg.StoragePath, "user directory SQLite path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run provisions storage and reports the outcome.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceProvision, func(context.Context) error {
		store, err := sqlite.Open(cfg.StoragePath)
		if err != nil {
			return fmt.Errorf("provision user store: %w", err)
		}
		if err := store.Close(); err != nil {
			return fmt.Errorf("close user store: %w", err)
		}
		log.Printf("user storage provisioned at %s", cfg.StoragePath)
		return nil
	})
}
