package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"budget/internal/amqp"
	"budget/internal/app"
)

type watchCmd struct {
	io    IO
	queue string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "print change notifications as they arrive" }
func (*watchCmd) Usage() string {
	return `watch [-queue <name>]

  Consumes the AMQP change notifications published after each write.
  Requires AMQP_URL. Stops on interrupt.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.queue, "queue", "", "queue to consume, defaults to AMQP_ROUTING_KEY")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := app.FromContext(ctx)
	cfg := a.Config
	if cfg.AMQPURL == "" {
		return failf(c.io, "AMQP_URL is not set")
	}
	queue := c.queue
	if queue == "" {
		queue = cfg.AMQPRoutingKey
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, queue, a.Logger())
	if err != nil {
		return failf(c.io, "connect: %v", err)
	}
	defer client.Close()

	fmt.Fprintf(c.io.Out, "Watching %s on %s\n", queue, cfg.AMQPExchange)
	err = client.ConsumeChanges(ctx, func(m *amqp.ChangeMessage) error {
		_, err := fmt.Fprintf(c.io.Out, "%s  %-14s %s\n", m.Timestamp.Format("15:04:05"), m.Key, m.Event)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return failf(c.io, "watch: %v", err)
	}
	return subcommands.ExitSuccess
}
