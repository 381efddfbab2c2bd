package http

import (
	"net/http"
	"time"

	"budget/internal/core"
	"budget/internal/log"
)

type transactionRequest struct {
	Title  string      `json:"title"`
	Amount AmountInput `json:"amount"`
	Date   string      `json:"date"`
	Type   string      `json:"type"`
}

type transactionPatchRequest struct {
	Title  *string      `json:"title"`
	Amount *AmountInput `json:"amount"`
	Date   *string      `json:"date"`
	Type   *string      `json:"type"`
}

type transactionsResponse struct {
	Transactions []core.Transaction `json:"transactions"`
}

type deleteIntentResponse struct {
	Token       string           `json:"token"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	Transaction core.Transaction `json:"transaction"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var txs []core.Transaction
	if v := r.URL.Query().Get("type"); v != "" {
		typ, err := core.ParseTransactionType(v)
		if err != nil {
			BadRequestError(err.Error()).Write(w, r)
			return
		}
		txs = s.app.Ledger.ByType(typ)
	} else {
		txs = s.app.Ledger.All()
	}
	NewResponse().JSON(transactionsResponse{Transactions: nonNil(txs)}).Write(w, r)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.app.Ledger.Get(r.PathValue("id"))
	if !ok {
		NotFoundError("transaction not found").Write(w, r)
		return
	}
	NewResponse().JSON(tx).Write(w, r)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}

	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w, r)
		return
	}
	title, amount, err := core.ValidateInput(sanitizeInput(req.Title), string(req.Amount))
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w, r)
		return
	}
	date := core.Today()
	if req.Date != "" {
		if date, err = core.ParseDate(req.Date); err != nil {
			UnprocessableEntityError(err.Error()).Write(w, r)
			return
		}
	}

	tx := s.app.Ledger.Add(title, amount, date, typ)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.NewFields().WithTransaction(tx.ID, string(tx.Type), tx.Amount.String()).ToSlice()...)
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		JSON(tx).
		Write(w, r)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req transactionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w, r)
		return
	}

	if !s.app.Ledger.Edit(id, patch) {
		NotFoundError("transaction not found").Write(w, r)
		return
	}
	tx, _ := s.app.Ledger.Get(id)
	NewResponse().JSON(tx).Write(w, r)
}

func (req transactionPatchRequest) toPatch() (core.TransactionPatch, error) {
	var p core.TransactionPatch
	if req.Title != nil {
		title, _, err := core.ValidateInput(sanitizeInput(*req.Title), "1")
		if err != nil {
			return p, err
		}
		p.Title = &title
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(string(*req.Amount))
		if err != nil {
			return p, err
		}
		p.Amount = &amount
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			return p, err
		}
		p.Date = &date
	}
	if req.Type != nil {
		typ, err := core.ParseTransactionType(*req.Type)
		if err != nil {
			return p, err
		}
		p.Type = &typ
	}
	return p, nil
}

// handleRequestDelete opens a delete intent and parks it under a token
// until the client confirms or cancels.
func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	intent := s.app.Ledger.RequestDelete(r.PathValue("id"))
	tx, ok := intent.Transaction()
	if !ok {
		intent.Cancel()
		NotFoundError("transaction not found").Write(w, r)
		return
	}
	token := s.app.Intents.Put(intent)
	NewResponse().Status(http.StatusAccepted).JSON(deleteIntentResponse{
		Token:       token,
		ExpiresAt:   intent.CreatedAt().Add(s.app.Config.DeleteIntentTTL),
		Transaction: tx,
	}).Write(w, r)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	intent, ok := s.app.Intents.Take(r.PathValue("token"))
	if !ok {
		NotFoundError("unknown or expired deletion").Write(w, r)
		return
	}
	deleted := intent.Confirm()
	if deleted {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
			log.FieldTxID, intent.ID(), log.FieldOperation, log.OpDelete)
	}
	NewResponse().JSON(map[string]bool{"deleted": deleted}).Write(w, r)
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	intent, ok := s.app.Intents.Take(r.PathValue("token"))
	if !ok {
		NotFoundError("unknown or expired deletion").Write(w, r)
		return
	}
	intent.Cancel()
	NewResponse().Status(http.StatusNoContent).Write(w, r)
}

func nonNil(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return []core.Transaction{}
	}
	return txs
}
