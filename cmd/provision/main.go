// Package main runs one-shot storage provisioning and exits.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	provisioncmd "github.com/louisbranch/crowdcue/internal/cmd/provision"
	"github.com/louisbranch/crowdcue/internal/platform/config"
)

func main() {
	cfg, err := provisioncmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[PROVISION] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := provisioncmd.Run(ctx, cfg); err != nil {
		config.Exitf("provision storage: %v", err)
	}
}
