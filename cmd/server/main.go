package main

import (
	"context"
	"log"
	"os"

	"github.com/Stewz00/mailforge-api/internal/config"
	"github.com/Stewz00/mailforge-api/internal/server"
	"github.com/urfave/cli/v3"
)

func main() {
	// .env values become env vars before flag sources are resolved.
	config.LoadDotEnv()

	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newRootCommand serves by default. Root flags are inherited by every subcommand.
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:   "mailforge-api",
		Usage:  "Signup, login and email campaign API",
		Flags:  config.Flags(),
		Action: server.Run,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default)",
				Action: server.Run,
			},
			migrateCommand(),
		},
	}
}
