package ledger

import (
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// All returns the transactions in insertion order.
func (l *Ledger) All() []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.copyLocked()
}

func (l *Ledger) Get(id string) (core.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.txs[i], true
	}
	return core.Transaction{}, false
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

// MonthlyTotal sums the amounts of type typ dated in the given calendar
// month. Results are cached until the next mutation.
func (l *Ledger) MonthlyTotal(typ core.TransactionType, month time.Month, year int) decimal.Decimal {
	key := string(typ) + ":" + strconv.Itoa(year) + ":" + strconv.Itoa(int(month))

	l.mu.RLock()
	defer l.mu.RUnlock()
	if v, ok := l.totals.Get(key); ok {
		return v
	}
	total := decimal.Zero
	for _, tx := range l.txs {
		if tx.Type == typ && tx.Date.InMonth(month, year) {
			total = total.Add(tx.Amount)
		}
	}
	l.totals.Set(key, total)
	return total
}

// Balance is the principal fund plus all income minus all expenses.
func (l *Ledger) Balance() decimal.Decimal {
	fund := decimal.Zero
	if l.fund != nil {
		fund = l.fund.PrincipalFund()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	total := fund
	for _, tx := range l.txs {
		total = total.Add(tx.Signed())
	}
	return total
}

// Recent returns the last n transactions added, newest first.
func (l *Ledger) Recent(n int) []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return []core.Transaction{}
	}
	if n > len(l.txs) {
		n = len(l.txs)
	}
	out := make([]core.Transaction, 0, n)
	for i := len(l.txs) - 1; i >= len(l.txs)-n; i-- {
		out = append(out, l.txs[i])
	}
	return out
}

// ByType returns the transactions of one type, most recent date first.
func (l *Ledger) ByType(typ core.TransactionType) []core.Transaction {
	l.mu.RLock()
	out := make([]core.Transaction, 0, len(l.txs))
	for _, tx := range l.txs {
		if tx.Type == typ {
			out = append(out, tx)
		}
	}
	l.mu.RUnlock()
	sortByDateDesc(out)
	return out
}

// History groups transactions by calendar month, newest month first.
func (l *Ledger) History() []core.MonthGroup {
	all := l.All()
	sortByDateDesc(all)

	groups := []core.MonthGroup{}
	for _, tx := range all {
		n := len(groups)
		if n > 0 && tx.Date.InMonth(groups[n-1].Month, groups[n-1].Year) {
			groups[n-1].Transactions = append(groups[n-1].Transactions, tx)
			continue
		}
		groups = append(groups, core.MonthGroup{
			Year:         tx.Date.Year(),
			Month:        tx.Date.Month(),
			Transactions: []core.Transaction{tx},
		})
	}
	return groups
}

// MonthSummary reports income, expense and the share of income spent.
func (l *Ledger) MonthSummary(month time.Month, year int) core.MonthSummary {
	return core.NewMonthSummary(year, month,
		l.MonthlyTotal(core.Income, month, year),
		l.MonthlyTotal(core.Expense, month, year))
}

// sortByDateDesc keeps insertion order among transactions of the same day.
func sortByDateDesc(txs []core.Transaction) {
	slices.SortStableFunc(txs, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
}
