// Package main starts the listener service and handles termination.
//
// The process is the read edge: it replays the shared log into per-party
// snapshots and streams snapshot-plus-tail to connected observers.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	listenercmd "github.com/louisbranch/crowdcue/internal/cmd/listener"
)

func main() {
	cfg, err := listenercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[LISTENER] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := listenercmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
