package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"budget/internal/core"
)

type settingsCmd struct {
	io            IO
	name          string
	firstName     string
	language      string
	currency      string
	principalFund string
	revenueTypes  string
	theme         string
	toggleTheme   bool
}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "show or change profile and preferences" }
func (*settingsCmd) Usage() string {
	return `settings [-name ..] [-first-name ..] [-language ..] [-currency ..]
         [-principal-fund <amount>] [-revenue-types a,b,c] [-theme light|dark|system] [-toggle-theme]

  Without flags, prints the current settings. Changing the language also
  changes region and nationality.
`
}

func (c *settingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "your name")
	f.StringVar(&c.firstName, "first-name", "", "your first name")
	f.StringVar(&c.language, "language", "", "interface language")
	f.StringVar(&c.currency, "currency", "", "display currency")
	f.StringVar(&c.principalFund, "principal-fund", "", "starting balance added to every transaction")
	f.StringVar(&c.revenueTypes, "revenue-types", "", "comma separated income categories, empty to reset")
	f.StringVar(&c.theme, "theme", "", "light, dark or system")
	f.BoolVar(&c.toggleTheme, "toggle-theme", false, "switch between light and dark")
}

func (c *settingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := gated(ctx, c.io)
	if !ok {
		return subcommands.ExitFailure
	}

	set := flagsSet(f)
	patch, err := c.patch(set)
	if err != nil {
		return usagef(c.io, "%v", err)
	}
	if set["toggle-theme"] && c.toggleTheme {
		a.Prefs.ToggleTheme()
	}
	if patch != nil {
		a.Prefs.Update(*patch)
	}
	c.print(a.Prefs.Settings())
	return subcommands.ExitSuccess
}

// patch returns nil when no settings flag was given.
func (c *settingsCmd) patch(set map[string]bool) (*core.SettingsPatch, error) {
	var p core.SettingsPatch
	changed := false

	if set["name"] {
		v := strings.TrimSpace(c.name)
		p.Name, changed = &v, true
	}
	if set["first-name"] {
		v := strings.TrimSpace(c.firstName)
		p.FirstName, changed = &v, true
	}
	if set["language"] {
		l := core.Language(c.language).Normalize()
		if !l.IsValid() {
			return nil, fmt.Errorf("unsupported language %q", c.language)
		}
		r := core.RegionFor(l)
		p.Language, p.Region, p.Nationality = &l, &r.Region, &r.Nationality
		changed = true
	}
	if set["currency"] {
		cur := core.Currency(c.currency).Normalize()
		if !cur.IsValid() {
			return nil, fmt.Errorf("unsupported currency %q", c.currency)
		}
		p.Currency, changed = &cur, true
	}
	if set["principal-fund"] {
		fund, err := parseFund(c.principalFund)
		if err != nil {
			return nil, fmt.Errorf("principal fund: %w", err)
		}
		p.PrincipalFund, changed = &fund, true
	}
	if set["revenue-types"] {
		p.RevenueTypes, changed = splitList(c.revenueTypes), true
	}
	if set["theme"] {
		t := core.Theme(c.theme)
		if !t.IsValid() {
			return nil, fmt.Errorf("unsupported theme %q", c.theme)
		}
		p.Theme, changed = &t, true
	}
	if !changed {
		return nil, nil
	}
	return &p, nil
}

func (c *settingsCmd) print(s core.Settings) {
	w := c.io.Out
	fmt.Fprintf(w, "Name:           %s %s\n", s.FirstName, s.Name)
	fmt.Fprintf(w, "Language:       %s\n", s.Language)
	fmt.Fprintf(w, "Region:         %s (%s)\n", s.Region, s.Nationality)
	fmt.Fprintf(w, "Currency:       %s\n", s.Currency)
	fmt.Fprintf(w, "Theme:          %s\n", s.Theme)
	fmt.Fprintf(w, "Principal fund: %s\n", core.FormatAmount(s.PrincipalFund, string(s.Currency)))
	fmt.Fprintf(w, "Income types:   %s\n", strings.Join(s.IncomeCategories(), ", "))
}

// parseFund is ParseAmount that also takes zero, to clear the fund.
func parseFund(s string) (decimal.Decimal, error) {
	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil && d.IsZero() {
		return decimal.Zero, nil
	}
	return core.ParseAmount(s)
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
