package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type categoryRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	UserID *int64 `json:"user_id"`
}

func (req categoryRequest) toCategory() (core.Category, error) {
	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		return core.Category{}, err
	}
	c := core.Category{
		Name:    sanitizeInput(req.Name),
		Type:    typ,
		OwnerID: req.UserID,
	}
	if c.OwnerID != nil && *c.OwnerID <= 0 {
		c.OwnerID = nil
	}
	return c, c.Validate()
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListCategories(w, r)
	case http.MethodPost:
		s.handleCreateCategory(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// handleListCategories returns the categories visible to a user: their own
// plus the global set. Without user_id only global categories come back.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cats, err := s.ledger.Categories(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}

	writeJSON(w, http.StatusOK, struct {
		Success    bool           `json:"success"`
		Categories []categoryJSON `json:"categories"`
	}{Success: true, Categories: out})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	c, err := req.toCategory()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := s.ledger.AddCategory(r.Context(), &c); err != nil {
		writeServiceError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Category created",
		log.FieldCategoryID, c.ID, log.FieldCategory, c.Name)

	writeJSON(w, http.StatusCreated, struct {
		Success  bool         `json:"success"`
		Category categoryJSON `json:"category"`
	}{Success: true, Category: toCategoryJSON(c)})
}

func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/categories/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := s.ledger.CategoryByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success  bool         `json:"success"`
			Category categoryJSON `json:"category"`
		}{Success: true, Category: toCategoryJSON(c)})

	case http.MethodPut:
		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
		c, err := req.toCategory()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		c.ID = id
		if err := s.ledger.UpdateCategory(r.Context(), c); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success  bool         `json:"success"`
			Category categoryJSON `json:"category"`
		}{Success: true, Category: toCategoryJSON(c)})

	case http.MethodDelete:
		if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		s.logger.InfoContext(r.Context(), "Category deleted", log.FieldCategoryID, id)
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
