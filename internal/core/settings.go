package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type (
	Theme string

	// Settings is the per-installation user profile and preferences record.
	Settings struct {
		Name          string          `json:"name"`
		FirstName     string          `json:"firstName"`
		Region        string          `json:"region"`
		Nationality   string          `json:"nationality"`
		Language      Language        `json:"language"`
		Currency      Currency        `json:"currency"`
		IsOnboarded   bool            `json:"isOnboarded"`
		Theme         Theme           `json:"theme"`
		PrincipalFund decimal.Decimal `json:"principalFund"`
		RevenueTypes  []string        `json:"revenueTypes"`
	}

	// SettingsPatch overwrites the non-nil fields of a Settings record.
	SettingsPatch struct {
		Name          *string
		FirstName     *string
		Region        *string
		Nationality   *string
		Language      *Language
		Currency      *Currency
		IsOnboarded   *bool
		Theme         *Theme
		PrincipalFund *decimal.Decimal
		RevenueTypes  []string
	}

	// Profile holds what the onboarding flow gathers across its steps.
	Profile struct {
		Name      string
		FirstName string
		Language  Language
		Currency  Currency
	}
)

// DefaultIncomeCategories is offered when the user has not defined any.
var DefaultIncomeCategories = []string{"Salary", "Freelance", "Investments", "Gifts", "Other"}

// DefaultSettings returns the record used on first launch.
func DefaultSettings() Settings {
	return Settings{
		Language:      LanguageFrench,
		Currency:      CurrencyAriary,
		Theme:         ThemeSystem,
		PrincipalFund: decimal.Zero,
		RevenueTypes:  []string{},
	}
}

// Toggle flips between light and dark. System resolves to light.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	default:
		return false
	}
}

// Apply returns s with the patch merged over it. A non-nil RevenueTypes
// replaces the list, including with an empty one.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.FirstName != nil {
		s.FirstName = *p.FirstName
	}
	if p.Region != nil {
		s.Region = *p.Region
	}
	if p.Nationality != nil {
		s.Nationality = *p.Nationality
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.IsOnboarded != nil {
		s.IsOnboarded = *p.IsOnboarded
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.PrincipalFund != nil {
		s.PrincipalFund = *p.PrincipalFund
	}
	if p.RevenueTypes != nil {
		s.RevenueTypes = append([]string{}, p.RevenueTypes...)
	}
	return s
}

// ProfilePatch turns a profile into the patch saved by the settings screen.
// Region and nationality follow the language.
func ProfilePatch(p Profile) SettingsPatch {
	region := RegionFor(p.Language)
	return SettingsPatch{
		Name:        &p.Name,
		FirstName:   &p.FirstName,
		Language:    &p.Language,
		Currency:    &p.Currency,
		Region:      &region.Region,
		Nationality: &region.Nationality,
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.RevenueTypes = append([]string{}, s.RevenueTypes...)
	return s
}

// IncomeCategories returns the user's income labels, or the defaults when
// none are set.
func (s Settings) IncomeCategories() []string {
	if len(s.RevenueTypes) > 0 {
		return append([]string{}, s.RevenueTypes...)
	}
	return append([]string{}, DefaultIncomeCategories...)
}

// MergeStored overlays a stored JSON record on the defaults, so fields
// missing from older records keep their default value.
func MergeStored(raw []byte) (Settings, error) {
	s := DefaultSettings()
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings(), err
	}
	if s.RevenueTypes == nil {
		s.RevenueTypes = []string{}
	}
	return s, nil
}
