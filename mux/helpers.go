package mux

import (
	"net/http"
	"path"
	"sort"
)

var (
	notFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	// The Allow header is set by Router.ServeHTTP before this runs.
	methodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
)

// cleanPath returns the canonical path for p, eliminating . and .. elements
// per RFC 3986 Section 5.2.4 (remove dot segments).
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// allowedMethods returns the methods registered for routes whose path
// matches the request. The result is sorted and deduplicated.
func allowedMethods(router *Router, req *http.Request) []string {
	seen := make(map[string]bool)
	var allowed []string
	for _, route := range router.routes {
		if route.err != nil || route.path == nil {
			continue
		}
		if _, ok := route.path.match(req.URL.Path); !ok {
			continue
		}
		for _, m := range route.methods {
			if !seen[m] {
				seen[m] = true
				allowed = append(allowed, m)
			}
		}
	}
	sort.Strings(allowed)
	return allowed
}
