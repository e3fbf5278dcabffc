package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cinenote/cinenote-api/internal/ratings"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusByKind is the single error-to-status mapping table at the boundary.
var statusByKind = map[ratings.Kind]int{
	ratings.KindInvalidInput:    http.StatusBadRequest,
	ratings.KindUnauthenticated: http.StatusUnauthorized,
	ratings.KindForbidden:       http.StatusForbidden,
	ratings.KindNotFound:        http.StatusNotFound,
	ratings.KindConflict:        http.StatusConflict,
	ratings.KindInternal:        http.StatusInternalServerError,
}

var codeByKind = map[ratings.Kind]string{
	ratings.KindInvalidInput:    "INVALID_INPUT",
	ratings.KindUnauthenticated: "UNAUTHENTICATED",
	ratings.KindForbidden:       "FORBIDDEN",
	ratings.KindNotFound:        "NOT_FOUND",
	ratings.KindConflict:        "CONFLICT",
	ratings.KindInternal:        "INTERNAL_ERROR",
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{Code: code, Message: message})
}

// respondEngineError maps an engine error to its boundary status. Internal
// failures are logged with context and reduced to a generic message so no
// detail leaks to the caller.
func (s *Server) respondEngineError(w http.ResponseWriter, op string, err error) {
	kind := ratings.KindOf(err)
	if kind == ratings.KindInternal {
		s.logger.Printf("%s error: %v", op, err)
		s.respondError(w, http.StatusInternalServerError, codeByKind[kind], "Internal server error")
		return
	}

	message := err.Error()
	var engineErr *ratings.Error
	if errors.As(err, &engineErr) {
		message = engineErr.Message
	}
	s.respondError(w, statusByKind[kind], codeByKind[kind], message)
}

func (s *Server) respondUnauthenticated(w http.ResponseWriter) {
	s.respondError(w, http.StatusUnauthorized, codeByKind[ratings.KindUnauthenticated], "Missing or invalid authentication information")
}

func (s *Server) respondForbidden(w http.ResponseWriter) {
	s.respondError(w, http.StatusForbidden, codeByKind[ratings.KindForbidden], "Admin access required")
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) && typeError.Field != "" {
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid value for field "+typeError.Field)
		return
	}
	s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid JSON body")
}
