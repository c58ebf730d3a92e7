package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
	"github.com/waterapps/portal/internal/core/ports/driving"
)

// Ensure moderationService implements ModerationService
var _ driving.ModerationService = (*moderationService)(nil)

// ModerationServiceConfig holds configuration for the moderation service.
type ModerationServiceConfig struct {
	ReviewAPI driven.ReviewAPI
	Logger    *slog.Logger
}

type moderationService struct {
	reviews driven.ReviewAPI
	policy  *bluemonday.Policy
	logger  *slog.Logger
}

// NewModerationService creates a new moderation service.
func NewModerationService(cfg ModerationServiceConfig) driving.ModerationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &moderationService{
		reviews: cfg.ReviewAPI,
		policy:  bluemonday.StrictPolicy(),
		logger:  logger,
	}
}

// ListPending returns pending reviews, flagging the ones that carry markup.
// Null entries in the API response are dropped.
func (s *moderationService) ListPending(ctx context.Context, viewer *domain.Viewer) ([]*domain.Review, error) {
	bearer, err := s.authorize(viewer)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListPending(ctx, bearer, domain.PendingReviewLimit)
	if err != nil {
		return nil, err
	}

	pending := make([]*domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if r == nil {
			continue
		}
		r.ContainsMarkup = s.containsMarkup(r)
		pending = append(pending, r)
	}
	if dropped := len(reviews) - len(pending); dropped > 0 {
		s.logger.Warn("review API returned null entries", "count", dropped)
	}
	return pending, nil
}

// Moderate approves or rejects a review.
func (s *moderationService) Moderate(ctx context.Context, viewer *domain.Viewer, reviewID string, req domain.ModerationRequest) (*domain.ModerationResult, error) {
	bearer, err := s.authorize(viewer)
	if err != nil {
		return nil, err
	}

	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return nil, fmt.Errorf("%w: review id is required", domain.ErrInvalidInput)
	}
	if !req.Decision.IsValid() {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", domain.ErrInvalidInput)
	}
	req.Note = strings.TrimSpace(req.Note)

	result, err := s.reviews.Moderate(ctx, bearer, reviewID, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review moderated", "review_id", reviewID, "decision", req.Decision)
	return result, nil
}

// authorize applies the gates shared by every moderation call and returns
// the bearer token to present.
func (s *moderationService) authorize(viewer *domain.Viewer) (string, error) {
	if viewer != nil && viewer.User.IsPreviewPassword() {
		return "", domain.ErrSSORequired
	}
	if s.reviews == nil || !s.reviews.Configured() {
		return "", domain.ErrReviewAPINotConfigured
	}
	var bearer string
	if viewer != nil {
		bearer = viewer.Tokens.BearerToken()
	}
	if bearer == "" {
		return "", domain.ErrTokenUnavailable
	}
	return bearer, nil
}

// containsMarkup reports whether any text field holds HTML that the strict
// policy would remove. The text itself is left as submitted.
func (s *moderationService) containsMarkup(r *domain.Review) bool {
	fields := []string{r.ReviewID, r.CreatedAt, r.Name, r.Email, r.Role, r.Company, r.LinkedIn, r.Text}
	if rating, ok := r.Rating.(string); ok {
		fields = append(fields, rating)
	}
	for _, v := range fields {
		if html.UnescapeString(s.policy.Sanitize(v)) != v {
			return true
		}
	}
	return false
}
