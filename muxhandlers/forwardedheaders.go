package muxhandlers

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/vitalvas/webapi/mux"
)

// ErrInvalidProxy is returned when a TrustedProxies entry is neither a valid
// IP address nor a valid CIDR range.
var ErrInvalidProxy = errors.New("forwarded headers: invalid proxy entry")

// ForwardedHeaders selects which X-Forwarded-* headers are applied.
type ForwardedHeaders uint8

const (
	// ForwardedFor applies X-Forwarded-For to r.RemoteAddr.
	ForwardedFor ForwardedHeaders = 1 << iota
	// ForwardedHost applies X-Forwarded-Host to r.Host.
	ForwardedHost
	// ForwardedProto applies X-Forwarded-Proto to r.URL.Scheme.
	ForwardedProto

	ForwardedAll = ForwardedFor | ForwardedHost | ForwardedProto
)

// Has reports whether all bits of f are set.
func (h ForwardedHeaders) Has(f ForwardedHeaders) bool {
	return h&f == f
}

// Original values are kept in these request headers after rewriting.
const (
	HeaderOriginalFor   = "X-Original-For"
	HeaderOriginalProto = "X-Original-Proto"
	HeaderOriginalHost  = "X-Original-Host"
)

// ForwardedHeadersConfig configures the ForwardedHeaders middleware.
type ForwardedHeadersConfig struct {
	// Headers selects the forwarded headers to honour. Zero disables the
	// middleware.
	Headers ForwardedHeaders

	// TrustedProxies is a list of IP addresses and CIDR ranges. When empty,
	// every peer is trusted: the deployment infrastructure is expected to
	// strip client-supplied forwarding headers.
	TrustedProxies []string

	// ForwardLimit is the number of proxy entries consumed from the right
	// of each header list. Defaults to 1.
	ForwardLimit int
}

// proxyTrustSet holds pre-parsed IPs and CIDRs for fast runtime lookup.
type proxyTrustSet struct {
	ips  []net.IP
	nets []*net.IPNet
}

// ForwardedHeadersMiddleware returns a middleware that rewrites the request's
// client address, scheme and host from X-Forwarded-For, X-Forwarded-Proto and
// X-Forwarded-Host. Values are read right to left, at most ForwardLimit
// entries deep; with a trust list, walking stops at the first untrusted hop.
//
// It returns an error if the configuration contains unparseable IP/CIDR entries.
func ForwardedHeadersMiddleware(cfg ForwardedHeadersConfig) (mux.MiddlewareFunc, error) {
	var ts *proxyTrustSet
	if len(cfg.TrustedProxies) > 0 {
		var err error
		ts, err = parseTrustedProxies(cfg.TrustedProxies)
		if err != nil {
			return nil, err
		}
	}

	limit := cfg.ForwardLimit
	if limit <= 0 {
		limit = 1
	}

	headers := cfg.Headers

	return func(next http.Handler) http.Handler {
		if headers == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ts != nil && !ts.containsAddr(r.RemoteAddr) {
				next.ServeHTTP(w, r)
				return
			}

			if headers.Has(ForwardedFor) {
				if ip := forwardedClient(splitHeaderList(r.Header.Values("X-Forwarded-For")), limit, ts); ip != "" {
					r.Header.Set(HeaderOriginalFor, r.RemoteAddr)
					r.RemoteAddr = ip
				}
			}

			if headers.Has(ForwardedProto) {
				if scheme := forwardedScheme(splitHeaderList(r.Header.Values("X-Forwarded-Proto"))); scheme != "" {
					original := "http"
					if r.TLS != nil {
						original = "https"
					}
					r.Header.Set(HeaderOriginalProto, original)

					u := *r.URL
					u.Scheme = scheme
					r.URL = &u
				}
			}

			if headers.Has(ForwardedHost) {
				if hosts := splitHeaderList(r.Header.Values("X-Forwarded-Host")); len(hosts) > 0 {
					r.Header.Set(HeaderOriginalHost, r.Host)
					r.Host = hosts[len(hosts)-1]
				}
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// splitHeaderList flattens comma-separated header values, dropping empty
// entries.
func splitHeaderList(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// forwardedClient walks X-Forwarded-For entries right to left and returns the
// address of the furthest hop that may be believed.
func forwardedClient(entries []string, limit int, ts *proxyTrustSet) string {
	var client string
	for i := len(entries) - 1; i >= 0 && limit > 0; i-- {
		candidate := parseForwardedIP(entries[i])
		if candidate == "" {
			break
		}
		client = candidate
		limit--
		if ts != nil && !ts.contains(net.ParseIP(candidate)) {
			break
		}
	}
	return client
}

// forwardedScheme returns the rightmost X-Forwarded-Proto entry when it is
// http or https.
func forwardedScheme(entries []string) string {
	if len(entries) == 0 {
		return ""
	}
	scheme := strings.ToLower(entries[len(entries)-1])
	if scheme == "http" || scheme == "https" {
		return scheme
	}
	return ""
}

// parseTrustedProxies parses a list of IP addresses and CIDR ranges into a
// proxyTrustSet. It returns an error wrapping ErrInvalidProxy for any entry
// that is neither a valid IP nor a valid CIDR.
func parseTrustedProxies(entries []string) (*proxyTrustSet, error) {
	ts := &proxyTrustSet{}

	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, entry)
			}

			ts.nets = append(ts.nets, ipNet)
			continue
		}

		ip := net.ParseIP(entry)
		if ip == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, entry)
		}

		ts.ips = append(ts.ips, ip)
	}

	return ts, nil
}

// containsAddr reports whether a host:port (or bare IP) peer address is
// trusted.
func (ts *proxyTrustSet) containsAddr(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return ts.contains(net.ParseIP(host))
}

func (ts *proxyTrustSet) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}

	for _, trusted := range ts.ips {
		if trusted.Equal(ip) {
			return true
		}
	}

	for _, ipNet := range ts.nets {
		if ipNet.Contains(ip) {
			return true
		}
	}

	return false
}

// parseForwardedIP extracts an IP from an X-Forwarded-For entry, which may
// carry a port or IPv6 brackets:
//
//	192.0.2.60
//	192.0.2.60:4711
//	[2001:db8::1]:4711
func parseForwardedIP(val string) string {
	if host, _, err := net.SplitHostPort(val); err == nil {
		val = host
	} else {
		val = strings.TrimSuffix(strings.TrimPrefix(val, "["), "]")
	}

	if ip := net.ParseIP(val); ip != nil {
		return val
	}

	return ""
}
