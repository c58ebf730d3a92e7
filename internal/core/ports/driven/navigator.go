package driven

import "net/url"

// Navigator is the page's view of its own location.
type Navigator interface {
	// Location returns the absolute URL of the current page.
	Location() *url.URL

	// Assign navigates to target, which may be relative to Location.
	// Navigation leaves the page; callers must not render after it.
	Assign(target string)

	// ReplaceState rewrites the visible URL without a new history entry or reload.
	ReplaceState(target string)
}
