package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"budget/internal/app"
	"budget/internal/core"
	"budget/internal/prefs"
)

const recentCount = 5

type statusCmd struct {
	io IO
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show balance and latest transactions" }
func (*statusCmd) Usage() string {
	return `status

  Prints the onboarding state, the running balance and the last five
  transactions added.
`
}

func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := app.FromContext(ctx)
	if a.Prefs.State() != prefs.Onboarded {
		fmt.Fprintln(c.io.Out, "Not onboarded yet. Run `budget onboard` to get started.")
		return subcommands.ExitSuccess
	}

	s := a.Prefs.Settings()
	fmt.Fprintf(c.io.Out, "Hello %s\n", s.FirstName)
	fmt.Fprintf(c.io.Out, "Balance: %s\n\n", core.FormatAmount(a.Ledger.Balance(), string(s.Currency)))

	recent := a.Ledger.Recent(recentCount)
	if len(recent) == 0 {
		fmt.Fprintln(c.io.Out, "No transactions yet.")
		return subcommands.ExitSuccess
	}
	printTransactions(c.io.Out, recent, s.Currency)
	return subcommands.ExitSuccess
}
