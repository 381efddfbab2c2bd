package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type historyCmd struct {
	io IO
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show all transactions grouped by month" }
func (*historyCmd) Usage() string {
	return `history

  Prints every transaction grouped by calendar month, newest first.
`
}

func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := gated(ctx, c.io)
	if !ok {
		return subcommands.ExitFailure
	}
	groups := a.Ledger.History()
	if len(groups) == 0 {
		fmt.Fprintln(c.io.Out, "No transactions yet.")
		return subcommands.ExitSuccess
	}
	currency := a.Prefs.Settings().Currency
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(c.io.Out)
		}
		fmt.Fprintf(c.io.Out, "== %s ==\n", g.Label())
		printTransactions(c.io.Out, g.Transactions, currency)
	}
	return subcommands.ExitSuccess
}
