package domain

import "fmt"

// PendingReviewLimit is how many pending reviews the dashboard requests at once.
const PendingReviewLimit = 25

// ModerationDecision is the outcome a moderator assigns to a review.
type ModerationDecision string

const (
	DecisionApproved ModerationDecision = "approved"
	DecisionRejected ModerationDecision = "rejected"
)

// IsValid reports whether the decision is one the review API accepts.
func (d ModerationDecision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Review is a customer review awaiting moderation.
type Review struct {
	ReviewID  string `json:"review_id"`
	CreatedAt string `json:"created_at,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Company   string `json:"company,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Rating    any    `json:"rating,omitempty"`
	Text      string `json:"review,omitempty"`

	// ContainsMarkup is set by the moderation service when a field holds HTML.
	ContainsMarkup bool `json:"contains_markup"`
}

// RatingLabel renders the rating, which the review API sends as either a
// number or a string.
func (r *Review) RatingLabel() string {
	switch v := r.Rating.(type) {
	case nil:
		return "Not provided"
	case string:
		if v == "" {
			return "Not provided"
		}
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

// ModerationRequest is the body sent to the moderate endpoint.
type ModerationRequest struct {
	Decision ModerationDecision `json:"decision"`
	Note     string             `json:"note"`
}

// ModerationResult is the review API's answer to a moderation request.
type ModerationResult struct {
	Message  string             `json:"message,omitempty"`
	ReviewID string             `json:"review_id,omitempty"`
	Decision ModerationDecision `json:"decision,omitempty"`
}
