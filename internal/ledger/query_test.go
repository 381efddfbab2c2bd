package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
)

func titles(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Title
	}
	return out
}

func seed(t *testing.T) *Ledger {
	t.Helper()
	l, _ := newLedger(t, "0")
	l.Add("Salary Jan", dec("1000"), core.NewDate(2024, time.January, 15), core.Income)
	l.Add("Rent Jan", dec("400"), core.NewDate(2024, time.January, 20), core.Expense)
	l.Add("Gift Dec", dec("50"), core.NewDate(2023, time.December, 24), core.Income)
	l.Add("Salary Feb", dec("1000"), core.NewDate(2024, time.February, 15), core.Income)
	l.Add("Food Jan", dec("100"), core.NewDate(2024, time.January, 5), core.Expense)
	l.Add("Rent Feb", dec("400"), core.NewDate(2024, time.February, 20), core.Expense)
	return l
}

func TestRecentIsNewestAddedFirst(t *testing.T) {
	l := seed(t)
	assert.Equal(t, []string{"Rent Feb", "Food Jan", "Salary Feb"}, titles(l.Recent(3)))
	assert.Len(t, l.Recent(100), 6)
	assert.Empty(t, l.Recent(0))
}

func TestByTypeSortedByDateDesc(t *testing.T) {
	l := seed(t)
	assert.Equal(t, []string{"Salary Feb", "Salary Jan", "Gift Dec"}, titles(l.ByType(core.Income)))
	assert.Equal(t, []string{"Rent Feb", "Rent Jan", "Food Jan"}, titles(l.ByType(core.Expense)))
}

func TestHistoryGroupsByMonth(t *testing.T) {
	l := seed(t)
	groups := l.History()
	require.Len(t, groups, 3)

	assert.Equal(t, "February 2024", groups[0].Label())
	assert.Equal(t, []string{"Rent Feb", "Salary Feb"}, titles(groups[0].Transactions))
	assert.Equal(t, "January 2024", groups[1].Label())
	assert.Equal(t, []string{"Rent Jan", "Salary Jan", "Food Jan"}, titles(groups[1].Transactions))
	assert.Equal(t, "December 2023", groups[2].Label())

	empty, _ := newLedger(t, "0")
	assert.Empty(t, empty.History())
}

func TestMonthSummary(t *testing.T) {
	l := seed(t)
	s := l.MonthSummary(time.January, 2024)
	assert.True(t, s.Income.Equal(dec("1000")))
	assert.True(t, s.Expense.Equal(dec("500")))
	assert.True(t, s.Net.Equal(dec("500")))
	assert.True(t, s.SpentPercent.Equal(dec("50")))

	s = l.MonthSummary(time.March, 2024)
	assert.True(t, s.Income.IsZero())
	assert.True(t, s.SpentPercent.IsZero())
}

func TestAllReturnsCopy(t *testing.T) {
	l := seed(t)
	all := l.All()
	all[0].Title = "mutated"
	got, _ := l.Get(all[0].ID)
	assert.Equal(t, "Salary Jan", got.Title)
}
