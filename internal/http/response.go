package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type categoryJSON struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	OwnerID *int64 `json:"owner_id,omitempty"`
}

type transactionJSON struct {
	ID          int64        `json:"id"`
	Type        string       `json:"type"`
	Amount      string       `json:"amount"`
	AmountCents int64        `json:"amount_cents"`
	Category    categoryJSON `json:"category"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	UserID      int64        `json:"user_id"`
}

type userJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:      c.ID,
		Name:    c.Name,
		Type:    string(c.Type),
		OwnerID: c.OwnerID,
	}
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		AmountCents: t.Amount.Cents,
		Category:    toCategoryJSON(t.Category),
		Description: t.Description,
		Date:        t.Date.String(),
		UserID:      t.UserID,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, apiError{Success: false, Error: err.Error()})
}

// writeServiceError maps the service error taxonomy onto status codes.
// Anything unrecognized is treated as an internal failure.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyCategoryName),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrEmptyCredentials):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, storage.ErrCategoryInUse),
		errors.Is(err, storage.ErrEmailTaken):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
