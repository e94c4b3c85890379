package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/uidoperator/cmd/app/commands"
	"github.com/allisson/uidoperator/internal/app"
	"github.com/allisson/uidoperator/internal/config"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Load snapshots and serve the token API",
			Action: func(ctx context.Context, _ *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply or roll back the SQL schema for keys, salts, clients and opt-outs",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "dir",
					Value: "migrations",
					Usage: "Directory holding the postgresql and mysql migration sets",
				},
				&cli.IntFlag{
					Name:  "steps",
					Usage: "Apply n migrations, or roll back n when negative (0 applies all)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				logger := app.NewContainer(cfg).Logger()

				return commands.RunMigrations(logger, commands.MigrateOptions{
					Driver:           cfg.DBDriver,
					ConnectionString: cfg.DBConnectionString,
					Dir:              cmd.String("dir"),
					Steps:            int(cmd.Int("steps")),
				})
			},
		},
		{
			Name:  "check-snapshots",
			Usage: "Load keys, key ACLs, salts and clients once and report their sizes",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCheckSnapshots(ctx, container, commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
	}
}
