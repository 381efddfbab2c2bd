package core

import "strings"

const (
	LanguageFrench   Language = "fr"
	LanguageEnglish  Language = "en"
	LanguageMalagasy Language = "mg"
	LanguageGerman   Language = "de"

	CurrencyAriary Currency = "MGA"
	CurrencyEuro   Currency = "EUR"
	CurrencyDollar Currency = "USD"
)

type (
	Language string
	Currency string

	LanguageOption struct {
		Value Language
		Label string
	}

	CurrencyOption struct {
		Value  Currency
		Label  string
		Symbol string
	}

	// RegionOption is the region/nationality pair selected with a language.
	RegionOption struct {
		Language    Language
		Label       string
		Region      string
		Nationality string
	}
)

var Languages = []LanguageOption{
	{LanguageFrench, "Français"},
	{LanguageEnglish, "English"},
	{LanguageMalagasy, "Malagasy"},
	{LanguageGerman, "Deutsch"},
}

var Currencies = []CurrencyOption{
	{CurrencyAriary, "Ariary (MGA)", "Ar"},
	{CurrencyEuro, "Euro (EUR)", "€"},
	{CurrencyDollar, "Dollar (USD)", "$"},
}

var Regions = []RegionOption{
	{LanguageFrench, "Europe (Français)", "Europe", "Européen"},
	{LanguageEnglish, "International (English)", "International", "International"},
	{LanguageMalagasy, "Madagascar (Malagasy)", "Madagascar", "Malgache"},
	{LanguageGerman, "Deutschland (Deutsch)", "Deutschland", "Deutsch"},
}

// internationalRegion is used for languages missing from Regions.
var internationalRegion = RegionOption{Label: "International", Region: "International", Nationality: "International"}

// RegionFor looks up the region selected alongside a language.
func RegionFor(l Language) RegionOption {
	for _, r := range Regions {
		if r.Language == l {
			return r
		}
	}
	r := internationalRegion
	r.Language = l
	return r
}

// Normalize lowercases and trims a language code typed by a user.
func (l Language) Normalize() Language {
	return Language(strings.ToLower(strings.TrimSpace(string(l))))
}

// Normalize uppercases and trims an ISO currency code.
func (c Currency) Normalize() Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(string(c))))
}

func (l Language) IsValid() bool {
	for _, o := range Languages {
		if o.Value == l {
			return true
		}
	}
	return false
}

func (c Currency) IsValid() bool {
	_, ok := c.option()
	return ok
}

// Symbol returns the display symbol, or the code itself when unknown.
func (c Currency) Symbol() string {
	if o, ok := c.option(); ok {
		return o.Symbol
	}
	return string(c)
}

func (c Currency) option() (CurrencyOption, bool) {
	for _, o := range Currencies {
		if o.Value == c {
			return o, true
		}
	}
	return CurrencyOption{}, false
}
