package domain

import (
	"strings"
)

const (
	// LoginPage is the portal login page, relative to the current location.
	LoginPage = "portal-login.html"

	// LoginPagePath is the absolute path of the login page on the portal origin.
	LoginPagePath = "/" + LoginPage

	// DefaultPostLoginRedirectPath is where users land after a successful login.
	DefaultPostLoginRedirectPath = "/management-dashboard.html"

	// DefaultPreviewSessionHours is the preview-password session lifetime
	// used when none is configured.
	DefaultPreviewSessionHours = 12
)

// DefaultScopes are the OAuth scopes requested when none are configured.
var DefaultScopes = []string{"openid", "email", "profile"}

// AuthConfig is the portal authentication configuration.
// A resolved AuthConfig is immutable for the lifetime of the request that resolved it.
type AuthConfig struct {
	Enabled               bool     `json:"enabled"`
	CognitoDomain         string   `json:"cognitoDomain"`
	AppClientID           string   `json:"appClientId"`
	RedirectURI           string   `json:"redirectUri"`
	LogoutRedirectURI     string   `json:"logoutRedirectUri"`
	Scopes                []string `json:"scopes"`
	PostLoginRedirectPath string   `json:"postLoginRedirectPath"`

	// Preview password mode. This is a convenience gate for environments
	// without identity-provider access and is not real authentication.
	PreviewPasswordLoginEnabled bool     `json:"previewPasswordLoginEnabled"`
	PreviewAllowedEmailDomains  []string `json:"previewAllowedEmailDomains"`
	PreviewSessionHours         float64  `json:"previewSessionHours"`
}

// WithDefaults returns a copy of the config with every unset field filled in.
// origin is the scheme://host of the current page and is used for the
// default redirect URIs.
func (c AuthConfig) WithDefaults(origin string) AuthConfig {
	origin = strings.TrimRight(origin, "/")

	resolved := c
	resolved.CognitoDomain = strings.TrimRight(c.CognitoDomain, "/")
	if resolved.RedirectURI == "" {
		resolved.RedirectURI = origin + LoginPagePath
	}
	if resolved.LogoutRedirectURI == "" {
		resolved.LogoutRedirectURI = origin + LoginPagePath
	}
	if len(c.Scopes) == 0 {
		resolved.Scopes = append([]string(nil), DefaultScopes...)
	} else {
		resolved.Scopes = append([]string(nil), c.Scopes...)
	}
	if resolved.PostLoginRedirectPath == "" {
		resolved.PostLoginRedirectPath = DefaultPostLoginRedirectPath
	}
	if resolved.PreviewSessionHours <= 0 {
		resolved.PreviewSessionHours = DefaultPreviewSessionHours
	}
	resolved.PreviewAllowedEmailDomains = append([]string(nil), c.PreviewAllowedEmailDomains...)
	return resolved
}

// IsConfigured reports whether the identity provider is wired up.
func (c AuthConfig) IsConfigured() bool {
	return c.Enabled && c.CognitoDomain != "" && c.AppClientID != "" && c.RedirectURI != ""
}

// MissingSettings lists the settings that keep IsConfigured from being true.
func (c AuthConfig) MissingSettings() []string {
	var missing []string
	if !c.Enabled {
		missing = append(missing, "enabled")
	}
	if c.CognitoDomain == "" {
		missing = append(missing, "cognitoDomain")
	}
	if c.AppClientID == "" {
		missing = append(missing, "appClientId")
	}
	if c.RedirectURI == "" {
		missing = append(missing, "redirectUri")
	}
	return missing
}

// AllowsPreviewDomain reports whether an email domain may use preview
// password login. The match is case-insensitive and accepts subdomains of an
// allowed domain.
func (c AuthConfig) AllowsPreviewDomain(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	for _, allowed := range c.PreviewAllowedEmailDomains {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}
		if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
			return true
		}
	}
	return false
}
