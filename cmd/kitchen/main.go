package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"workspace-service/internal/commands"
	"workspace-service/internal/styles"
)

// Populated at build-time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := commands.NewApp(&commands.Flags{}, version)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, styles.OfflineStyle.Render("error: "+err.Error()))
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}
