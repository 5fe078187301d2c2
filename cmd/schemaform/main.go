package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog/v2"

	"github.com/giantswarm/schemaform/cmd/schemaform/app"
	"github.com/giantswarm/schemaform/internal/config"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		klog.Warningf("ignoring .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.NewSchemaformCommand().ExecuteContext(ctx)
	stop()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
