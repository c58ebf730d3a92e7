package driven

import "github.com/waterapps/portal/internal/core/domain"

// TokenCodec encodes and decodes id_token values.
// Decoding does not verify signatures.
type TokenCodec interface {
	// MintPreviewToken builds the id_token of a preview-password session.
	MintPreviewToken(claims *domain.PreviewClaims) (string, error)

	// DecodePayload returns the claims of the token's payload segment.
	DecodePayload(token string) (map[string]any, error)
}
