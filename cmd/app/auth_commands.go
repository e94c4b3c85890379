package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/uidoperator/cmd/app/commands"
	"github.com/allisson/uidoperator/internal/app"
	"github.com/allisson/uidoperator/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-client",
			Usage: "Register an API client and print its key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable client name",
				},
				&cli.IntFlag{
					Name:     "site-id",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Site the client acts for",
				},
				&cli.StringFlag{
					Name:    "roles",
					Aliases: []string{"r"},
					Usage:   "Comma-separated roles: generator, mapper, id_reader, optout (omit for interactive mode)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				clientUseCase, err := container.ClientUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateClient(
					ctx,
					clientUseCase,
					container.Logger(),
					cmd.String("name"),
					int64(cmd.Int("site-id")),
					cmd.String("roles"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
