// Package main is the entry point for the mediflow-admin command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zatekoja/mediflow-admin/cmd/mediflow-admin/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
