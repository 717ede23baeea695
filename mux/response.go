package mux

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
)

// ProblemDetails is an RFC 9457 error body.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// ResponseJSON encodes v as JSON and writes it to the response with the given
// status code. The Content-Type header is set to "application/json".
// If encoding fails, an HTTP 500 Internal Server Error is written instead.
func ResponseJSON(w http.ResponseWriter, code int, v any) {
	writeJSON(w, "application/json", code, v)
}

// ResponseProblem writes an application/problem+json body for the status
// code. The title is the status text.
func ResponseProblem(w http.ResponseWriter, r *http.Request, code int, detail string) {
	writeJSON(w, "application/problem+json", code, ProblemDetails{
		Type:     "https://httpstatuses.io/" + strconv.Itoa(code),
		Title:    http.StatusText(code),
		Status:   code,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, contentType string, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
