package core

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// MonthSummary is the income/expense picture of one calendar month.
type MonthSummary struct {
	Year         int             `json:"year"`
	Month        time.Month      `json:"month"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Net          decimal.Decimal `json:"net"`
	SpentPercent decimal.Decimal `json:"spentPercent"`
}

// MonthGroup holds the transactions of one calendar month.
type MonthGroup struct {
	Year         int           `json:"year"`
	Month        time.Month    `json:"month"`
	Transactions []Transaction `json:"transactions"`
}

var hundred = decimal.NewFromInt(100)

// NewMonthSummary derives net and the share of income spent. The share is
// zero when there is no income.
func NewMonthSummary(year int, month time.Month, income, expense decimal.Decimal) MonthSummary {
	s := MonthSummary{
		Year:         year,
		Month:        month,
		Income:       income,
		Expense:      expense,
		Net:          income.Sub(expense),
		SpentPercent: decimal.Zero,
	}
	if income.IsPositive() {
		s.SpentPercent = expense.Div(income).Mul(hundred).Round(2)
	}
	return s
}

// Label renders "January 2024".
func (g MonthGroup) Label() string {
	return g.Month.String() + " " + strconv.Itoa(g.Year)
}
