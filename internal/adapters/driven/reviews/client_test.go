package reviews

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"

	"github.com/waterapps/portal/internal/core/domain"
)

const apiBase = "https://reviews.example.test/prod"

func TestClient_Configured(t *testing.T) {
	assert.False(t, NewClient("  ", 0).Configured())
	assert.True(t, NewClient(apiBase+"/", 0).Configured())
	assert.Equal(t, apiBase, NewClient(apiBase+"//", 0).baseURL)
}

func TestClient_ListPending(t *testing.T) {
	defer gock.Off()

	gock.New(apiBase).
		Get("/reviews").
		MatchParam("status", "pending").
		MatchParam("limit", "25").
		MatchHeader("Authorization", "^Bearer id-token$").
		Reply(http.StatusOK).
		JSON(map[string]interface{}{
			"reviews": []map[string]interface{}{
				{"review_id": "r1", "name": "Jo", "rating": 5, "review": "Great"},
				{"review_id": "r2", "name": "Sam", "rating": "4"},
			},
		})

	reviews, err := NewClient(apiBase, 0).ListPending(context.Background(), "id-token", 25)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "r1", reviews[0].ReviewID)
	assert.Equal(t, "Great", reviews[0].Text)
	assert.Equal(t, "5", reviews[0].RatingLabel())
	assert.Equal(t, "4", reviews[1].RatingLabel())
	assert.True(t, gock.IsDone())
}

func TestClient_ListPending_MissingList(t *testing.T) {
	defer gock.Off()

	gock.New(apiBase).
		Get("/reviews").
		Reply(http.StatusOK).
		JSON(map[string]interface{}{"count": 0})

	reviews, err := NewClient(apiBase, 0).ListPending(context.Background(), "t", 25)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestClient_ListPending_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api message", http.StatusForbidden, `{"message":"Forbidden"}`, "Forbidden (HTTP 403)"},
		{"default message", http.StatusInternalServerError, "oops", "Failed to load pending reviews. (HTTP 500)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()

			gock.New(apiBase).
				Get("/reviews").
				Reply(tt.status).
				BodyString(tt.body)

			_, err := NewClient(apiBase, 0).ListPending(context.Background(), "t", 25)
			require.Error(t, err)

			var apiErr *domain.ReviewAPIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestClient_Moderate(t *testing.T) {
	defer gock.Off()

	gock.New(apiBase).
		Post("/reviews/abc-123/moderate").
		MatchHeader("Authorization", "^Bearer id-token$").
		MatchType("json").
		JSON(map[string]string{"decision": "approved", "note": "thanks"}).
		Reply(http.StatusOK).
		JSON(map[string]string{"message": "Review approved"})

	result, err := NewClient(apiBase, 0).Moderate(context.Background(), "id-token", "abc-123", domain.ModerationRequest{
		Decision: domain.DecisionApproved,
		Note:     "thanks",
	})
	require.NoError(t, err)
	assert.Equal(t, "Review approved", result.Message)
	assert.Equal(t, "abc-123", result.ReviewID)
	assert.Equal(t, domain.DecisionApproved, result.Decision)
	assert.True(t, gock.IsDone())
}

func TestClient_Moderate_Error(t *testing.T) {
	defer gock.Off()

	gock.New(apiBase).
		Post("/reviews/r1/moderate").
		Reply(http.StatusConflict).
		BodyString("")

	_, err := NewClient(apiBase, 0).Moderate(context.Background(), "t", "r1", domain.ModerationRequest{Decision: domain.DecisionRejected})
	require.Error(t, err)
	assert.Equal(t, "Failed to update review. (HTTP 409)", err.Error())
}

func TestClient_NotConfigured(t *testing.T) {
	_, err := NewClient("", 0).ListPending(context.Background(), "t", 25)
	assert.ErrorIs(t, err, domain.ErrReviewAPINotConfigured)
}

func TestClient_Moderate_EscapesID(t *testing.T) {
	var gotPath string
	gock.New(apiBase).
		Post("/reviews/").
		AddMatcher(func(req *http.Request, _ *gock.Request) (bool, error) {
			gotPath = req.URL.EscapedPath()
			return true, nil
		}).
		Reply(http.StatusOK).
		JSON(map[string]string{})
	defer gock.Off()

	_, err := NewClient(apiBase, 0).Moderate(context.Background(), "t", "r 1/2", domain.ModerationRequest{Decision: domain.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, "/prod/reviews/r%201%2F2/moderate", gotPath)
}
