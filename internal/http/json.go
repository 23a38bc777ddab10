package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/target/navguard/internal/errors"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// client went away
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response. The body carries the numeric code
// alongside the message so the SPA's response interceptor can branch on it.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	msg := http.StatusText(p.Code)
	if p.Err != nil {
		msg = p.Err.Error()
	}
	WriteJSON(w, p.Code, map[string]any{"code": p.Code, "error": p.ErrCode, "msg": msg})
}

// WriteAppError writes err with the status derived from its application error code.
// Internal errors are not echoed to the client.
func WriteAppError(w http.ResponseWriter, errCode string, err error) {
	err = apperrors.MapDBError(err)
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		WriteError(w, ErrorParams{Code: status, ErrCode: errCode})
		return
	}
	WriteError(w, ErrorParams{Code: status, ErrCode: errCode, Err: err})
}
