package muxhandlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/vitalvas/webapi/mux"
)

// DeveloperExceptionConfig configures the developer exception page.
type DeveloperExceptionConfig struct {
	// LogFunc is an optional callback invoked with the request, the
	// recovered value and the goroutine stack when a panic occurs.
	LogFunc func(r *http.Request, err any, stack []byte)
}

type developerExceptionHeader struct {
	Name  string
	Value string
}

type developerExceptionPage struct {
	Type    string
	Message string
	Method  string
	Path    string
	Query   string
	Headers []developerExceptionHeader
	Stack   string
}

var developerExceptionTemplate = template.Must(template.New("exception").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Internal Server Error</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { color: #a00; }
pre { background: #f6f6f6; padding: 1em; overflow-x: auto; }
th { text-align: left; padding-right: 1em; }
</style>
</head>
<body>
<h1>An unhandled exception occurred while processing the request.</h1>
<h2>{{.Type}}: {{.Message}}</h2>
<h3>Request</h3>
<p><code>{{.Method}} {{.Path}}{{if .Query}}?{{.Query}}{{end}}</code></p>
<h3>Headers</h3>
<table>
{{range .Headers}}<tr><th>{{.Name}}</th><td>{{.Value}}</td></tr>
{{end}}</table>
<h3>Stack</h3>
<pre>{{.Stack}}</pre>
</body>
</html>
`))

// DeveloperExceptionMiddleware returns a middleware that recovers from
// panics and answers 500 with an HTML page describing the panic, the
// request and the goroutine stack. It is meant for development only.
//
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func DeveloperExceptionMiddleware(cfg DeveloperExceptionConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusResponseWriter(w)

			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if err, ok := rv.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rv)
				}

				stack := debug.Stack()
				if cfg.LogFunc != nil {
					cfg.LogFunc(r, rv, stack)
				}

				if sw.wroteHeader {
					return
				}

				writeDeveloperExceptionPage(sw, r, rv, stack)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

func writeDeveloperExceptionPage(w http.ResponseWriter, r *http.Request, rv any, stack []byte) {
	page := developerExceptionPage{
		Type:    fmt.Sprintf("%T", rv),
		Message: fmt.Sprint(rv),
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Stack:   string(stack),
	}

	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		page.Headers = append(page.Headers, developerExceptionHeader{
			Name:  name,
			Value: strings.Join(r.Header.Values(name), ", "),
		})
	}

	var buf strings.Builder
	if err := developerExceptionTemplate.Execute(&buf, page); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-cache, no-store")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(buf.String()))
}
