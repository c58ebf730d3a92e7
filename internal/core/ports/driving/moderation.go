package driving

import (
	"context"

	"github.com/waterapps/portal/internal/core/domain"
)

// ModerationService approves and rejects customer reviews.
// Only SSO sessions may moderate.
type ModerationService interface {
	// ListPending returns the reviews awaiting a decision.
	ListPending(ctx context.Context, viewer *domain.Viewer) ([]*domain.Review, error)

	// Moderate records a decision for a review.
	Moderate(ctx context.Context, viewer *domain.Viewer, reviewID string, req domain.ModerationRequest) (*domain.ModerationResult, error)
}
