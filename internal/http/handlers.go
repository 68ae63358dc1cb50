package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

var errIDMismatch = errors.New("transactionId does not match the path")

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	txs, err := s.backend.List(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	out := make([]api.Transaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, api.Encode(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	t, err := s.backend.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Encode(t))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := api.DecodeDraftInput(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	t, err := s.backend.Create(r.Context(), in.Amount, in.Category)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	w.Header().Set("Location", collectionPath+"/"+strconv.FormatInt(t.ID, 10))
	writeJSON(w, http.StatusCreated, api.Encode(t))
}

// handleUpdate answers 200 with an empty body; clients reload to see the
// stored state.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	in, err := api.DecodeDraftInput(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if in.TransactionID != 0 && in.TransactionID != id {
		s.writeError(w, r, log.OpUpdate, errIDMismatch)
		return
	}
	if _, err := s.backend.Update(r.Context(), id, in.Amount, in.Category); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.backend.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmptyAmount), errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrInvalidID), errors.Is(err, errIDMismatch), errors.Is(err, api.ErrInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends a plain-text body. Internal failures are logged and
// their detail withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
		msg = "internal server error"
	}
	writeText(w, status, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
