package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

const (
	timestampLayout = "2006-01-02T15:04:05.000Z"
	msgInternal     = "Internal server error"
	msgSuccess      = "Success"
)

// envelope is the body of every JSON response, successful or not.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Code       string `json:"code,omitempty"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, r *http.Request, status int, msg string, data any) {
	writeJSON(w, status, newEnvelope(r, status, msg, data))
}

func newEnvelope(r *http.Request, status int, msg string, data any) envelope {
	return envelope{
		StatusCode: status,
		Message:    msg,
		Data:       data,
		Timestamp:  time.Now().UTC().Format(timestampLayout),
		Path:       r.URL.RequestURI(),
	}
}

// writeError renders err as an envelope. Errors that are not *common.APIError
// are logged and reported as a bare 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := common.AsAPIError(err)
	if !ok {
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		apiErr = common.InternalServerError(msgInternal)
	} else if apiErr.Status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	env := newEnvelope(r, apiErr.Status, apiErr.Message, nil)
	env.Code = apiErr.Code
	writeJSON(w, apiErr.Status, env)
}
