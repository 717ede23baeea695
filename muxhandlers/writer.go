package muxhandlers

import "net/http"

// statusResponseWriter records the status code and body size written by
// downstream handlers.
type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	size        int64
	wroteHeader bool
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	if sw, ok := w.(*statusResponseWriter); ok {
		return sw
	}
	return &statusResponseWriter{ResponseWriter: w}
}

func (sw *statusResponseWriter) WriteHeader(statusCode int) {
	if sw.wroteHeader {
		return
	}

	sw.wroteHeader = true
	sw.status = statusCode
	sw.ResponseWriter.WriteHeader(statusCode)
}

func (sw *statusResponseWriter) Write(b []byte) (int, error) {
	if !sw.wroteHeader {
		sw.WriteHeader(http.StatusOK)
	}

	n, err := sw.ResponseWriter.Write(b)
	sw.size += int64(n)

	return n, err
}

// Status returns the written status code, or 200 when nothing was written.
func (sw *statusResponseWriter) Status() int {
	if sw.status == 0 {
		return http.StatusOK
	}
	return sw.status
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (sw *statusResponseWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
