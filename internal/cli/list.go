package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"budget/internal/core"
)

type listCmd struct {
	io  IO
	typ string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list incomes or expenses, newest first" }
func (*listCmd) Usage() string {
	return `list -type income|expense

  Lists every transaction of one type with the month total.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "income or expense")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := gated(ctx, c.io)
	if !ok {
		return subcommands.ExitFailure
	}
	typ, err := core.ParseTransactionType(c.typ)
	if err != nil {
		return usagef(c.io, "%v", err)
	}

	currency := a.Prefs.Settings().Currency
	today := core.Today()
	total := a.Ledger.MonthlyTotal(typ, today.Month(), today.Year())
	fmt.Fprintf(c.io.Out, "This month: %s\n\n", core.FormatAmount(total, string(currency)))

	txs := a.Ledger.ByType(typ)
	if len(txs) == 0 {
		fmt.Fprintf(c.io.Out, "No %s recorded.\n", typ)
		return subcommands.ExitSuccess
	}
	printTransactions(c.io.Out, txs, currency)
	return subcommands.ExitSuccess
}
