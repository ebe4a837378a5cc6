// Package listener parses listener command flags and composes the service
// entrypoint.
package listener

import (
	"context"
	"flag"
	"fmt"
	"strings"

	entrypoint "github.com/louisbranch/crowdcue/internal/platform/cmd"
	server "github.com/louisbranch/crowdcue/internal/services/listener/app"
)

// Config holds listener command configuration.
type Config struct {
	HTTPAddr string `env:"CROWDCUE_LISTENER_HTTP_ADDR"    envDefault:":8081"`
	Brokers  string `env:"CROWDCUE_KAFKA_BROKERS"         envDefault:"localhost:9092"`
	Group    string `env:"CROWDCUE_LISTENER_KAFKA_GROUP"  envDefault:"crowdcue-listener"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "listener HTTP listen address")
	fs.StringVar(&cfg.Brokers, "brokers", cfg.Brokers, "comma-separated Kafka seed brokers")
	fs.StringVar(&cfg.Group, "group", cfg.Group, "Kafka consumer group")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the listener app and serves it.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceListener, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr: cfg.HTTPAddr,
			Brokers:  strings.Split(cfg.Brokers, ","),
			Group:    cfg.Group,
		}); err != nil {
			return fmt.Errorf("serve listener: %w", err)
		}
		return nil
	})
}
