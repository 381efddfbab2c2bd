package http

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

const defaultRecent = 5

type balanceResponse struct {
	Balance       decimal.Decimal `json:"balance"`
	PrincipalFund decimal.Decimal `json:"principalFund"`
	Currency      core.Currency   `json:"currency"`
	Formatted     string          `json:"formatted"`
}

type summaryResponse struct {
	core.MonthSummary
	Currency core.Currency `json:"currency"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	settings := s.app.Prefs.Settings()
	balance := s.app.Ledger.Balance()
	NewResponse().JSON(balanceResponse{
		Balance:       balance,
		PrincipalFund: settings.PrincipalFund,
		Currency:      settings.Currency,
		Formatted:     core.FormatAmount(balance, string(settings.Currency)),
	}).Write(w, r)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), core.Today())
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	NewResponse().JSON(summaryResponse{
		MonthSummary: s.app.Ledger.MonthSummary(params.Month, params.Year),
		Currency:     s.app.Prefs.Settings().Currency,
	}).Write(w, r)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	groups := s.app.Ledger.History()
	if groups == nil {
		groups = []core.MonthGroup{}
	}
	NewResponse().JSON(map[string][]core.MonthGroup{"months": groups}).Write(w, r)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	n := defaultRecent
	if v := r.URL.Query().Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > 100 {
			BadRequestError("limit must be between 1 and 100").Write(w, r)
			return
		}
		n = l
	}
	NewResponse().JSON(transactionsResponse{Transactions: nonNil(s.app.Ledger.Recent(n))}).Write(w, r)
}
