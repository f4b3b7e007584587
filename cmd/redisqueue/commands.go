package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kart-io/redisqueue/pkg/lock"
	"github.com/kart-io/redisqueue/pkg/queue"
)

func queueArgs(c *cli.Context, want int) (queue.QueueType, queue.QueueName, error) {
	if c.NArg() != want {
		return 0, 0, fmt.Errorf("expected %d arguments, got %d", want, c.NArg())
	}
	t, err := queue.ParseQueueType(c.Args().Get(0))
	if err != nil {
		return 0, 0, err
	}
	name, err := queue.ParseQueueName(c.Args().Get(1))
	if err != nil {
		return 0, 0, err
	}
	return t, name, nil
}

func send(c *cli.Context) error {
	t, name, err := queueArgs(c, 3)
	if err != nil {
		return err
	}
	message := c.Args().Get(2)

	_, _, client, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	q, err := client.Queue(t)
	if err != nil {
		return err
	}

	if delay := c.Duration("delay"); delay != 0 {
		delayed, ok := q.(*queue.DelayedQueue)
		if !ok {
			return fmt.Errorf("queue type %s does not support --delay", t)
		}
		err = delayed.SendAfter(c.Context, name, message, delay)
	} else {
		err = q.Send(c.Context, name, message)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Message sent successfully to queue: %s\n", t)
	return nil
}

func receive(c *cli.Context) error {
	t, name, err := queueArgs(c, 2)
	if err != nil {
		return err
	}

	_, _, client, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	q, err := client.Queue(t)
	if err != nil {
		return err
	}
	msg, ok, err := q.Receive(c.Context, name)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(c.App.Writer, "No message available on %s/%s\n", t, name)
		return nil
	}
	fmt.Fprintln(c.App.Writer, msg)
	return nil
}

// lockOp runs one lock manager call and prints its outcome.
type lockOp func(ctx context.Context, m *lock.Manager, c lock.Category, key string, ttl time.Duration) (bool, error)

func lockCommands() []*cli.Command {
	return []*cli.Command{
		lockCommand("acquire", "Acquire a lock", true,
			func(ctx context.Context, m *lock.Manager, c lock.Category, key string, ttl time.Duration) (bool, error) {
				return m.Acquire(ctx, c, key, ttl)
			}),
		lockCommand("release", "Release a lock", false,
			func(ctx context.Context, m *lock.Manager, c lock.Category, key string, _ time.Duration) (bool, error) {
				return m.Release(ctx, c, key)
			}),
		lockCommand("extend", "Extend a held lock", true,
			func(ctx context.Context, m *lock.Manager, c lock.Category, key string, ttl time.Duration) (bool, error) {
				return m.Extend(ctx, c, key, ttl)
			}),
		{
			Name:      "status",
			Usage:     "Report whether a lock is held",
			ArgsUsage: "<category> <lock-id>",
			Action:    lockStatus,
		},
	}
}

func lockCommand(name, usage string, withTTL bool, op lockOp) *cli.Command {
	cmd := &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<category> <lock-id>",
		Action: func(c *cli.Context) error {
			category, key, err := lockArgs(c)
			if err != nil {
				return err
			}

			cfg, _, client, cleanup, err := setup(c)
			if err != nil {
				return err
			}
			defer cleanup()

			ttl := cfg.Lock.DefaultTTL
			if c.IsSet("ttl") {
				ttl = c.Duration("ttl")
			}

			ok, err := op(c.Context, client.Locks(), category, key, ttl)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("failed to %s lock for category: %s", name, category)
			}
			fmt.Fprintf(c.App.Writer, "Lock %s for category: %s, lockID: %s\n", pastTense(name), category, key)
			return nil
		},
	}
	if withTTL {
		cmd.Flags = []cli.Flag{ttlFlag()}
	}
	return cmd
}

func lockStatus(c *cli.Context) error {
	category, key, err := lockArgs(c)
	if err != nil {
		return err
	}

	_, _, client, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	locked, err := client.Locks().IsLocked(c.Context, category, key)
	if err != nil {
		return err
	}
	ttl, err := client.Locks().TTL(c.Context, category, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "category=%s lockID=%s isLocked=%t ttl=%s\n", category, key, locked, ttl)
	return nil
}

func lockArgs(c *cli.Context) (lock.Category, string, error) {
	if c.NArg() != 2 {
		return 0, "", fmt.Errorf("expected 2 arguments, got %d", c.NArg())
	}
	category, err := lock.ParseCategory(c.Args().Get(0))
	if err != nil {
		return 0, "", err
	}
	return category, c.Args().Get(1), nil
}

func pastTense(verb string) string {
	switch verb {
	case "acquire":
		return "acquired"
	case "release":
		return "released"
	case "extend":
		return "extended"
	}
	return verb
}
