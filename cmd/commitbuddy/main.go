package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bashhack/commitbuddy/internal/config"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	// SIGINT/SIGTERM cancel the context; the confirmation prompt treats that
	// as a cancelled commit.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Execute(ctx, os.Args[1:])
	stop()

	app.exit(code)
}
