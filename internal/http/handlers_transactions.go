package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type createTransactionRequest struct {
	Type        string          `json:"type"`
	Amount      json.RawMessage `json:"amount"`
	CategoryID  int64           `json:"category_id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	UserID      int64           `json:"user_id"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	case http.MethodGet:
		s.handleListTransactions(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cents, err := parseAmountCents(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}

	// The wire form carries either a category id or a name to resolve
	// against the caller's visible categories.
	category := core.Category{ID: req.CategoryID}
	if category.ID == 0 {
		category, err = s.ledger.ResolveCategory(r.Context(), sanitizeInput(req.Category), typ, req.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	}

	tx := core.Transaction{
		Type:        typ,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: sanitizeInput(req.Description),
		Date:        date,
		UserID:      req.UserID,
	}

	if err := s.ledger.AddTransaction(r.Context(), &tx); err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateSummary(tx.UserID, tx.Type, tx.Date.Year(), tx.Date.Month())
	s.logger.InfoContext(r.Context(), "Transaction recorded",
		"transaction_id", tx.ID,
		log.FieldUserID, tx.UserID,
		log.FieldAmountCents, tx.Amount.Cents)

	writeJSON(w, http.StatusCreated, struct {
		Success bool   `json:"success"`
		ID      int64  `json:"id"`
		Summary string `json:"summary"`
	}{Success: true, ID: tx.ID, Summary: tx.Summary()})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if userID == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}

	all, err := s.ledger.Transactions(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Criteria arrive as raw query text; absent parameters leave the
	// corresponding bound unrestricted.
	q := r.URL.Query()
	filter := core.NewFilter()
	if v := q.Get("type"); v != "" {
		filter.Type = v
	}
	if v := q.Get("category"); v != "" {
		filter.Category = v
	}
	filter.From = q.Get("from")
	filter.To = q.Get("to")

	visible := filter.Apply(all)

	txs := make([]transactionJSON, 0, len(visible))
	for _, t := range visible {
		txs = append(txs, toTransactionJSON(t))
	}

	writeJSON(w, http.StatusOK, struct {
		Success      bool              `json:"success"`
		Count        int               `json:"count"`
		Transactions []transactionJSON `json:"transactions"`
		Categories   []string          `json:"categories"`
	}{
		Success:      true,
		Count:        len(txs),
		Transactions: txs,
		// Dropdown options come from the unfiltered list, so narrowing
		// by one criterion never hides the others' choices.
		Categories: core.CategoryOptions(all),
	})
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if userID == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}

	typ, err := core.ParseTransactionType(r.URL.Query().Get("type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	total, cached := s.summaryCache.Get(summaryKey(userID, typ, year, month))
	if !cached {
		total, err = s.ledger.MonthlyTotal(r.Context(), userID, typ, year, month)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		s.summaryCache.Set(summaryKey(userID, typ, year, month), total)
	} else {
		s.logger.DebugContext(r.Context(), "Summary cache hit",
			log.FieldUserID, userID, log.FieldYear, year, log.FieldMonth, int(month))
	}

	writeJSON(w, http.StatusOK, struct {
		Success     bool   `json:"success"`
		Type        string `json:"type"`
		Year        int    `json:"year"`
		Month       int    `json:"month"`
		Total       string `json:"total"`
		AmountCents int64  `json:"amount_cents"`
	}{
		Success:     true,
		Type:        string(typ),
		Year:        year,
		Month:       int(month),
		Total:       total.String(),
		AmountCents: total.Cents,
	})
}

func summaryKey(userID int64, typ core.TransactionType, year int, month time.Month) string {
	return strconv.FormatInt(userID, 10) + "|" + string(typ) + "|" +
		strconv.Itoa(year) + "-" + strconv.Itoa(int(month))
}

func (s *Server) invalidateSummary(userID int64, typ core.TransactionType, year int, month time.Month) {
	s.summaryCache.Delete(summaryKey(userID, typ, year, month))
}
