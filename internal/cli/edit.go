package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"budget/internal/core"
)

type editCmd struct {
	io     IO
	id     string
	typ    string
	title  string
	amount string
	date   string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change fields of a transaction" }
func (*editCmd) Usage() string {
	return `edit -id <id> [-title <title>] [-amount <amount>] [-date YYYY-MM-DD] [-type income|expense]

  Only the given fields change.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transaction id")
	f.StringVar(&c.typ, "type", "", "income or expense")
	f.StringVar(&c.title, "title", "", "new title")
	f.StringVar(&c.amount, "amount", "", "new amount")
	f.StringVar(&c.date, "date", "", "new date, YYYY-MM-DD")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := gated(ctx, c.io)
	if !ok {
		return subcommands.ExitFailure
	}
	if c.id == "" {
		return usagef(c.io, "-id is required")
	}

	patch, err := c.patch(flagsSet(f))
	if err != nil {
		return usagef(c.io, "%v", err)
	}
	if patch.IsEmpty() {
		return usagef(c.io, "nothing to change")
	}

	if !a.Ledger.Edit(c.id, patch) {
		fmt.Fprintf(c.io.Err, "no transaction with id %s, nothing changed\n", c.id)
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(c.io.Out, "Updated %s\n", c.id)
	return subcommands.ExitSuccess
}

func (c *editCmd) patch(set map[string]bool) (core.TransactionPatch, error) {
	var p core.TransactionPatch
	if set["title"] {
		title, _, err := core.ValidateInput(c.title, "1")
		if err != nil {
			return p, err
		}
		p.Title = &title
	}
	if set["amount"] {
		amount, err := core.ParseAmount(c.amount)
		if err != nil {
			return p, err
		}
		p.Amount = &amount
	}
	if set["date"] {
		date, err := core.ParseDate(c.date)
		if err != nil {
			return p, err
		}
		p.Date = &date
	}
	if set["type"] {
		typ, err := core.ParseTransactionType(c.typ)
		if err != nil {
			return p, err
		}
		p.Type = &typ
	}
	return p, nil
}
