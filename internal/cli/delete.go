package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"budget/internal/ledger"
)

type deleteCmd struct {
	io  IO
	id  string
	yes bool
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a transaction after confirmation" }
func (*deleteCmd) Usage() string {
	return `delete -id <id> [-yes]

  Asks for confirmation unless -yes is given. Deleting an unknown id does
  nothing.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transaction id")
	f.BoolVar(&c.yes, "yes", false, "do not ask for confirmation")
}

func (c *deleteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := gated(ctx, c.io)
	if !ok {
		return subcommands.ExitFailure
	}
	if c.id == "" {
		return usagef(c.io, "-id is required")
	}

	var confirm ledger.Confirmer = promptConfirmer{io: c.io, currency: a.Prefs.Settings().Currency}
	if c.yes {
		confirm = ledger.AlwaysConfirm
	}

	deleted, err := a.Ledger.Delete(ctx, c.id, confirm)
	if err != nil {
		return failf(c.io, "delete: %v", err)
	}
	if deleted {
		fmt.Fprintf(c.io.Out, "Deleted %s\n", c.id)
	} else {
		fmt.Fprintln(c.io.Out, "Nothing deleted")
	}
	return subcommands.ExitSuccess
}
