// Command uidoperator runs the identity token operator and its maintenance tasks.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "uidoperator",
		Usage:   "Identity token operator",
		Version: version,
		Commands: append(
			getSystemCommands(version),
			getAuthCommands()...,
		),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
