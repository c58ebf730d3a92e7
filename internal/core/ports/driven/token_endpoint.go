package driven

import "context"

// CodeExchange is an authorization_code grant request.
type CodeExchange struct {
	// TokenURL is the identity provider's token endpoint.
	TokenURL     string
	ClientID     string
	Code         string
	RedirectURI  string
	CodeVerifier string
}

// TokenResponse is the token endpoint's JSON body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenEndpoint exchanges authorization codes for tokens.
type TokenEndpoint interface {
	// ExchangeCode performs the grant. A non-success HTTP status is
	// returned as *domain.TokenExchangeError.
	ExchangeCode(ctx context.Context, req CodeExchange) (*TokenResponse, error)
}
