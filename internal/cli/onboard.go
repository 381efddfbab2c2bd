package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"budget/internal/app"
	"budget/internal/core"
	"budget/internal/prefs"
)

type onboardCmd struct {
	io        IO
	name      string
	firstName string
	language  string
	currency  string
}

func (*onboardCmd) Name() string     { return "onboard" }
func (*onboardCmd) Synopsis() string { return "complete the one-time setup" }
func (*onboardCmd) Usage() string {
	return `onboard -name <name> -first-name <first name> [-language fr|en|mg|de] [-currency MGA|EUR|USD]

  Saves your profile and unlocks the other commands. Region and nationality
  follow the language. Onboarding can only be completed once.
`
}

func (c *onboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "your name")
	f.StringVar(&c.firstName, "first-name", "", "your first name")
	f.StringVar(&c.language, "language", string(core.LanguageFrench), "interface language")
	f.StringVar(&c.currency, "currency", string(core.CurrencyAriary), "display currency")
}

func (c *onboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p := core.Profile{
		Name:      strings.TrimSpace(c.name),
		FirstName: strings.TrimSpace(c.firstName),
		Language:  core.Language(c.language).Normalize(),
		Currency:  core.Currency(c.currency).Normalize(),
	}
	if p.Name == "" || p.FirstName == "" {
		return usagef(c.io, "-name and -first-name are required")
	}
	if !p.Language.IsValid() {
		return usagef(c.io, "unsupported language %q", c.language)
	}
	if !p.Currency.IsValid() {
		return usagef(c.io, "unsupported currency %q", c.currency)
	}

	a := app.FromContext(ctx)
	s, err := a.Prefs.CompleteOnboarding(p)
	if errors.Is(err, prefs.ErrAlreadyOnboarded) {
		return failf(c.io, "already onboarded; use `budget settings` to change your profile")
	}
	if err != nil {
		return failf(c.io, "onboarding failed: %v", err)
	}
	fmt.Fprintf(c.io.Out, "Welcome %s %s (%s, %s)\n", s.FirstName, s.Name, s.Region, s.Currency)
	return subcommands.ExitSuccess
}
