package app

import (
	"context"
	"fmt"

	"github.com/louisbranch/crowdcue/internal/platform/broker"
)

// Config holds listener runtime configuration.
type Config struct {
	HTTPAddr string
	Brokers  []string
	Group    string
}

// Run composes the materializer and the streaming edge over one shared
// registry and drives both until ctx ends or either fails.
func Run(ctx context.Context, cfg Config) error {
	consumer, err := broker.NewKafkaConsumer(cfg.Brokers, cfg.Group, broker.TopicPartyUpdatesPattern)
	if err != nil {
		return fmt.Errorf("build consumer: %w", err)
	}
	defer consumer.Close()

	registry := NewRegistry()
	materializer := NewMaterializer(consumer, registry)
	server := NewServer(NewGateway(registry))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	go func() { errs <- materializer.Run(ctx) }()
	go func() { errs <- server.ListenAndServe(ctx, cfg.HTTPAddr) }()

	err = <-errs
	cancel()
	if second := <-errs; err == nil {
		err = second
	}
	return err
}
