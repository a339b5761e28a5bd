package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/personauth/internal/common"
)

const (
	msgNotFound      = "Person is not found. Please, check requisites."
	msgUpdateFailed  = "update failed"
	msgDeleteFailed  = "delete failed"
	msgPatchFailed   = "partial update failed"
	msgInternal      = "internal error"
	msgUnauthorized  = "unauthorized"
	msgLoginTaken    = "login already exists"
	typeInvalidArg   = "invalid_argument"
	typeNotFound     = "not_found"
	typeInternal     = "internal"
	typeUnauthorized = "unauthorized"
	typeConflict     = "conflict"
)

type errorResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, errorResponse{Message: msg, Type: typ})
}

// writeFailed reports a write operation that matched nothing.
func writeFailed(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(msg))
}

// writeServiceError translates the error of a service call and logs the
// ones that are not the caller's fault.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		s.logger.Warn(r.Context(), "invalid argument", "error", err)
		writeError(w, http.StatusBadRequest, typeInvalidArg, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, typeNotFound, msgNotFound)
	case errors.Is(err, common.ErrLoginTaken):
		writeError(w, http.StatusConflict, typeConflict, msgLoginTaken)
	default:
		s.logger.Error(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, typeInternal, msgInternal)
	}
}
