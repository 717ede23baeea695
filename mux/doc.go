// Package mux implements the request router used by the web API host.
//
// Routes match on a path template and an optional method list. Paths that
// match with the wrong method answer 405 with an Allow header (RFC 9110
// Section 15.5.6); everything else that does not match answers 404.
//
// # Path Variables
//
// Templates may contain variables, optionally constrained by a macro or a
// raw regular expression:
//
//	r.HandleFunc("/weatherforecast/{id:uuid}", handler).Methods(http.MethodGet)
//	r.HandleFunc("/pages/{n:[0-9]+}", handler)
//
// Variables are read with Vars or VarGet. Available macros are uuid, int,
// float, slug, alpha, alphanum, date and hex.
//
// # Middleware
//
// Middleware registered with Router.Use wraps matched handlers only. It runs
// after routing, so CurrentRoute returns the matched route:
//
//	r.Use(func(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
//	        if v, ok := mux.CurrentRoute(req).Metadata("policy"); ok {
//	            _ = v
//	        }
//	        next.ServeHTTP(w, req)
//	    })
//	})
//
// # Endpoint Metadata
//
// WithMetadata attaches arbitrary values to a route. Authorization
// requirements and API documentation groups are stored this way.
//
// # Walking
//
// Walk visits routes in registration order; document generators use it to
// enumerate endpoints.
package mux
