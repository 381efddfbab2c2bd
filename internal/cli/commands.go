package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"budget/internal/app"
	"budget/internal/core"
)

// IO is where commands read answers and write output.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func StdIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

type groupedCommand struct {
	cmd   subcommands.Command
	group string
}

func commands(stdio IO) []groupedCommand {
	return []groupedCommand{
		{&onboardCmd{io: stdio}, "setup"},
		{&settingsCmd{io: stdio}, "setup"},

		{&statusCmd{io: stdio}, "reports"},
		{&listCmd{io: stdio}, "reports"},
		{&historyCmd{io: stdio}, "reports"},
		{&monthCmd{io: stdio}, "reports"},

		{&addCmd{io: stdio}, "transactions"},
		{&editCmd{io: stdio}, "transactions"},
		{&deleteCmd{io: stdio}, "transactions"},

		{&watchCmd{io: stdio}, "tools"},
	}
}

// Register adds every budget command to c. Commands expect the App in the
// context passed to Execute (see app.WithApp).
func Register(c *subcommands.Commander, stdio IO) {
	for _, gc := range commands(stdio) {
		c.Register(gc.cmd, gc.group)
	}
}

// NeedsApp reports whether the named command reads or writes budget data.
// Help, flags and commands do not.
func NeedsApp(name string) bool {
	for _, gc := range commands(IO{}) {
		if gc.cmd.Name() == name {
			return true
		}
	}
	return false
}

// gated returns the App, or prints a hint and false while onboarding is
// not complete.
func gated(ctx context.Context, stdio IO) (*app.App, bool) {
	a := app.FromContext(ctx)
	if err := a.RequireOnboarded(); err != nil {
		fmt.Fprintln(stdio.Err, "onboarding required: run `budget onboard` first")
		return nil, false
	}
	return a, true
}

func failf(stdio IO, format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(stdio.Err, format+"\n", args...)
	return subcommands.ExitFailure
}

func usagef(stdio IO, format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(stdio.Err, format+"\n", args...)
	return subcommands.ExitUsageError
}

// flagsSet returns the names of flags given on the command line.
func flagsSet(f *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

func printTransactions(w io.Writer, txs []core.Transaction, currency core.Currency) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tTITLE\tAMOUNT\tID")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			tx.Date, tx.Type, tx.Title, core.FormatAmount(tx.Amount, string(currency)), tx.ID)
	}
	tw.Flush()
}

// promptConfirmer asks on the terminal. Anything but y or yes is a no.
type promptConfirmer struct {
	io       IO
	currency core.Currency
}

func (p promptConfirmer) ConfirmDelete(_ context.Context, tx core.Transaction) (bool, error) {
	fmt.Fprintf(p.io.Out, "Delete %q (%s, %s)? [y/N] ",
		tx.Title, core.FormatAmount(tx.Amount, string(p.currency)), tx.Date)
	line, err := bufio.NewReader(p.io.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
