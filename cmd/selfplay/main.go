// Package main plays random backgammon games against the rules engine.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	selfplaycmd "github.com/louisbranch/backgammon/internal/cmd/selfplay"
)

func main() {
	cfg, err := selfplaycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := selfplaycmd.Run(ctx, cfg, os.Stderr); err != nil {
		log.Fatalf("self-play: %v", err)
	}
}
