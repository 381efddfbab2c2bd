package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"budget/internal/core"
)

type addCmd struct {
	io     IO
	typ    string
	title  string
	amount string
	date   string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an income or an expense" }
func (*addCmd) Usage() string {
	return `add -type income|expense -title <title> -amount <amount> [-date YYYY-MM-DD]

  Amounts are positive; both 12.50 and 12,50 are accepted. The date
  defaults to today.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "income or expense")
	f.StringVar(&c.title, "title", "", "what the transaction is for")
	f.StringVar(&c.amount, "amount", "", "positive amount")
	f.StringVar(&c.date, "date", "", "calendar date, YYYY-MM-DD")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := gated(ctx, c.io)
	if !ok {
		return subcommands.ExitFailure
	}

	typ, err := core.ParseTransactionType(c.typ)
	if err != nil {
		return usagef(c.io, "%v", err)
	}
	title, amount, err := core.ValidateInput(c.title, c.amount)
	if err != nil {
		return usagef(c.io, "%v", err)
	}
	date := core.Today()
	if c.date != "" {
		if date, err = core.ParseDate(c.date); err != nil {
			return usagef(c.io, "%v", err)
		}
	}

	tx := a.Ledger.Add(title, amount, date, typ)
	fmt.Fprintf(c.io.Out, "Added %s %s\n", tx.Type, tx.ID)
	return subcommands.ExitSuccess
}
