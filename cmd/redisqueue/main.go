package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "redisqueue",
		Usage: "Redis-backed message queues and distributed locks",
		Flags: globalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and the FIFO queue listener",
				Flags:  serveFlags(),
				Action: serve,
			},
			{
				Name:      "send",
				Usage:     "Send a message to a queue",
				ArgsUsage: "<queue-type> <queue-name> <message>",
				Flags:     sendFlags(),
				Action:    send,
			},
			{
				Name:      "receive",
				Usage:     "Receive at most one message from a queue",
				ArgsUsage: "<queue-type> <queue-name>",
				Action:    receive,
			},
			{
				Name:        "lock",
				Usage:       "Manage distributed locks",
				Subcommands: lockCommands(),
			},
		},
	}
}
