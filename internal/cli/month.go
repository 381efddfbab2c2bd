package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"budget/internal/core"
)

type monthCmd struct {
	io    IO
	month int
	year  int
}

func (*monthCmd) Name() string     { return "month" }
func (*monthCmd) Synopsis() string { return "summarize one month" }
func (*monthCmd) Usage() string {
	return `month [-month 1-12] [-year YYYY]

  Prints income, expense, net and the share of income spent. Defaults to
  the current month.
`
}

func (c *monthCmd) SetFlags(f *flag.FlagSet) {
	today := core.Today()
	f.IntVar(&c.month, "month", int(today.Month()), "month number, 1-12")
	f.IntVar(&c.year, "year", today.Year(), "year")
}

func (c *monthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := gated(ctx, c.io)
	if !ok {
		return subcommands.ExitFailure
	}
	if c.month < 1 || c.month > 12 {
		return usagef(c.io, "-month must be between 1 and 12")
	}

	s := a.Ledger.MonthSummary(time.Month(c.month), c.year)
	cur := string(a.Prefs.Settings().Currency)
	fmt.Fprintf(c.io.Out, "%s %d\n", s.Month, s.Year)
	fmt.Fprintf(c.io.Out, "  Income:  %s\n", core.FormatAmount(s.Income, cur))
	fmt.Fprintf(c.io.Out, "  Expense: %s\n", core.FormatAmount(s.Expense, cur))
	fmt.Fprintf(c.io.Out, "  Net:     %s\n", core.FormatAmount(s.Net, cur))
	fmt.Fprintf(c.io.Out, "  Spent:   %s%%\n", s.SpentPercent.StringFixed(1))
	return subcommands.ExitSuccess
}
