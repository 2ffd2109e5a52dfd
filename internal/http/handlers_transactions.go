package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type createTransactionRequest struct {
	CategoryID  int64  `json:"category_id"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// updateTransactionRequest distinguishes omitted fields from explicit
// nulls: description set to null clears the stored value, while an
// absent key leaves it untouched.
type updateTransactionRequest struct {
	CategoryID  *int64          `json:"category_id"`
	Amount      *string         `json:"amount"`
	Type        *string         `json:"type"`
	Description json.RawMessage `json:"description"`
	Date        *string         `json:"date"`
}

func parseFilter(r *http.Request) (core.TransactionFilter, error) {
	var f core.TransactionFilter

	q := r.URL.Query()
	f.Search = strings.TrimSpace(q.Get("search"))
	if t := strings.TrimSpace(q.Get("type")); t != "" {
		f.Type = core.EntryType(t)
	}

	categoryID, err := queryInt(r, "category_id")
	if err != nil {
		return f, err
	}
	f.CategoryID = int64(categoryID)

	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		if f.StartDate, err = core.ParseDate(v); err != nil {
			return f, err
		}
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		if f.EndDate, err = core.ParseDate(v); err != nil {
			return f, err
		}
	}

	if f.Month, err = queryInt(r, "month"); err != nil {
		return f, err
	}
	if f.Year, err = queryInt(r, "year"); err != nil {
		return f, err
	}

	return f, f.Validate()
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.transactions.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := userID(r)
	tx, err := s.transactions.Create(r.Context(), owner, services.CreateTransactionInput{
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Type:        core.EntryType(req.Type),
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidatePeriod(owner, tx.Date.Month(), tx.Date.Year())
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx, ""))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.transactions.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx.Transaction, tx.CategoryName))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.UpdateTransactionInput{CategoryID: req.CategoryID}

	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.Amount = &amount
	}
	if req.Type != nil {
		t := core.EntryType(*req.Type)
		in.Type = &t
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.Date = &date
	}
	if len(req.Description) > 0 {
		if bytes.Equal(bytes.TrimSpace(req.Description), []byte("null")) {
			in.ClearDescription = true
		} else {
			var desc string
			if err := json.Unmarshal(req.Description, &desc); err != nil {
				writeError(w, r, fmt.Errorf("%w: description must be a string or null", core.ErrValidation))
				return
			}
			in.Description = &desc
		}
	}

	owner := userID(r)

	// The old period needs invalidation too when the date moves.
	before, err := s.transactions.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.transactions.Update(r.Context(), owner, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidatePeriod(owner, before.Date.Month(), before.Date.Year())
	s.invalidatePeriod(owner, tx.Date.Month(), tx.Date.Year())
	writeJSON(w, http.StatusOK, toTransactionResponse(tx.Transaction, tx.CategoryName))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := userID(r)
	tx, err := s.transactions.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.transactions.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidatePeriod(owner, tx.Date.Month(), tx.Date.Year())
	w.WriteHeader(http.StatusNoContent)
}
