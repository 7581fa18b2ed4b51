package handlers

import (
	"net/http"

	"github.com/dvloznov/zenith/internal/api/middleware"
	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/ledger"
)

type transactionRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

func (req transactionRequest) draft() (domain.TransactionDraft, error) {
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	typ, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	return domain.TransactionDraft{
		Description: req.Description,
		Amount:      amount,
		Date:        date,
		Type:        typ,
		Category:    req.Category,
	}, nil
}

// ListTransactions handles GET /api/transactions?type=&category=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter ledger.Filter
	if t := r.URL.Query().Get("type"); t != "" {
		typ, err := domain.ParseTransactionType(t)
		if err != nil {
			h.writeErr(w, "ListTransactions", err)
			return
		}
		filter.Type = typ
	}
	filter.Category = r.URL.Query().Get("category")

	txs := h.session.Transactions(filter)
	if txs == nil {
		txs = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, "CreateTransaction", err)
		return
	}
	draft, err := req.draft()
	if err != nil {
		h.writeErr(w, "CreateTransaction", err)
		return
	}

	tx, change, err := h.session.AddTransaction(draft)
	if err != nil {
		h.writeErr(w, "CreateTransaction", err)
		return
	}

	h.log.Info().Str("transaction_id", tx.ID).Int64("points_awarded", change.PointsAwarded).Msg("Transaction added")
	middleware.WriteJSON(w, http.StatusCreated, map[string]any{
		"transaction": tx,
		"change":      change,
	})
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, change := h.session.DeleteTransaction(id)
	if !deleted {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"deleted": true,
		"change":  change,
	})
}

// SuggestCategory handles POST /api/transactions/suggest-category
func (h *Handler) SuggestCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, "SuggestCategory", err)
		return
	}

	category, err := h.session.SuggestCategory(r.Context(), req.Description)
	if err != nil {
		h.writeErr(w, "SuggestCategory", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"category": category})
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.session.Categories()
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetSnapshot handles GET /api/snapshot
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// GetPoints handles GET /api/points
func (h *Handler) GetPoints(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"points": h.session.Points()})
}
