package app

import (
	"context"
	"fmt"

	"github.com/louisbranch/crowdcue/internal/auth"
	"github.com/louisbranch/crowdcue/internal/platform/broker"
	"github.com/louisbranch/crowdcue/internal/userdir/sqlite"
)

// Config holds session runtime configuration.
type Config struct {
	HTTPAddr    string
	Brokers     []string
	StoragePath string
	TokenSecret string
}

// Run composes the session service over Kafka and SQLite and serves its HTTP
// edge until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.TokenSecret == "" {
		return fmt.Errorf("token secret is required")
	}

	publisher, err := broker.NewKafkaPublisher(cfg.Brokers)
	if err != nil {
		return fmt.Errorf("connect publisher: %w", err)
	}
	defer publisher.Close()

	users, err := sqlite.Open(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer func() { _ = users.Close() }()

	tokens := auth.Config{Secret: []byte(cfg.TokenSecret)}
	server := NewServer(NewService(publisher), users, tokens)
	return server.ListenAndServe(ctx, cfg.HTTPAddr)
}
