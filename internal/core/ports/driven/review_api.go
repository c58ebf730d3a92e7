package driven

import (
	"context"

	"github.com/waterapps/portal/internal/core/domain"
)

// ReviewAPI is the remote review moderation API.
type ReviewAPI interface {
	// ListPending returns up to limit pending reviews.
	ListPending(ctx context.Context, bearer string, limit int) ([]*domain.Review, error)

	// Moderate records a decision for a review.
	Moderate(ctx context.Context, bearer, reviewID string, req domain.ModerationRequest) (*domain.ModerationResult, error)

	// Configured reports whether a base URL is set.
	Configured() bool
}
