package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Ensure requestNavigator implements Navigator.
var _ driven.Navigator = (*requestNavigator)(nil)

// requestNavigator presents the request URL as the page location and records
// navigation so the handler can answer with a redirect.
type requestNavigator struct {
	location *url.URL
	assigned string
}

// newRequestNavigator resolves the request URL against the public origin,
// or against the request's own scheme and host when none is configured.
func newRequestNavigator(r *http.Request, publicURL *url.URL) *requestNavigator {
	loc := &url.URL{
		Path:     r.URL.Path,
		RawPath:  r.URL.RawPath,
		RawQuery: r.URL.RawQuery,
	}
	if publicURL != nil && publicURL.Host != "" {
		loc.Scheme = publicURL.Scheme
		loc.Host = publicURL.Host
	} else {
		loc.Scheme = requestScheme(r)
		loc.Host = r.Host
	}
	return &requestNavigator{location: loc}
}

func (n *requestNavigator) Location() *url.URL {
	u := *n.location
	return &u
}

func (n *requestNavigator) Assign(target string) {
	n.assigned = n.resolve(target)
}

func (n *requestNavigator) ReplaceState(target string) {
	if u, err := url.Parse(n.resolve(target)); err == nil {
		n.location = u
	}
}

// Assigned returns the last navigation target, or "" when none happened.
func (n *requestNavigator) Assigned() string {
	return n.assigned
}

// Redirect answers with a redirect to the navigation target. It reports
// false when nothing was assigned.
func (n *requestNavigator) Redirect(w http.ResponseWriter, r *http.Request) bool {
	target := n.Assigned()
	if target == "" {
		return false
	}
	http.Redirect(w, r, target, http.StatusFound)
	return true
}

func (n *requestNavigator) resolve(target string) string {
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return n.location.ResolveReference(ref).String()
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
