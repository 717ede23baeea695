// Package muxhandlers provides HTTP middleware for the mux router and for
// the host wrapping it.
//
// # Forwarded Headers
//
// ForwardedHeadersMiddleware rewrites r.RemoteAddr, r.URL.Scheme and r.Host
// from X-Forwarded-For, X-Forwarded-Proto and X-Forwarded-Host. Without a
// TrustedProxies list every peer is believed; the original values are kept
// in X-Original-* request headers.
//
//	mw, err := muxhandlers.ForwardedHeadersMiddleware(muxhandlers.ForwardedHeadersConfig{
//	    Headers: muxhandlers.ForwardedFor | muxhandlers.ForwardedProto,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # HTTPS Redirection
//
// HTTPSRedirectMiddleware sends plain HTTP requests to the configured HTTPS
// port with 307 Temporary Redirect. Requests forwarded as https pass through.
//
// # Authorization
//
// AuthorizationMiddleware runs as router middleware, after a route matched.
// Routes opt in with RequireAuthorization:
//
//	route := r.HandleFunc("/items", create).Methods(http.MethodPost)
//	muxhandlers.RequireAuthorization(route)
//	r.Use(muxhandlers.AuthorizationMiddleware(muxhandlers.AuthorizationConfig{
//	    DefaultPolicy: bearerPolicy,
//	}))
//
// A Policy returning ErrForbidden answers 403; any other error answers 401
// with a WWW-Authenticate challenge.
//
// # Exception Handling
//
// DeveloperExceptionMiddleware renders panics as an HTML page with the stack
// trace. RecoveryMiddleware answers a bare 500 and only reports the stack to
// its LogFunc.
package muxhandlers
