package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/swaggo/swag"

	"github.com/waterapps/portal/docs"
	"github.com/waterapps/portal/internal/core/domain"
)

// maxModerationBodyBytes caps the moderation request body.
const maxModerationBodyBytes = 1 << 16

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"Authentication token unavailable. Please sign in again."`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// MeResponse describes the session of the calling tab
// @Description Current tab session
type MeResponse struct {
	Authenticated  bool           `json:"authenticated" example:"true"`
	CognitoEnabled bool           `json:"cognitoEnabled" example:"true"`
	Email          string         `json:"email,omitempty" example:"jane@waterapps.com.au"`
	AuthMode       string         `json:"authMode,omitempty" example:"preview_password"`
	ExpiresAt      int64          `json:"expiresAt,omitempty" example:"1700003600"`
	Claims         map[string]any `json:"claims,omitempty"`
}

// PendingReviewsResponse wraps the pending review list
// @Description Pending reviews
type PendingReviewsResponse struct {
	Reviews []*domain.Review `json:"reviews"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the portal
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the portal (checks session storage)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "Session storage unavailable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn("session storage not ready", "error", err)
			writeError(w, http.StatusServiceUnavailable, "session storage unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get portal version
// @Description  Returns the current build version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		s.logger.Error("read api doc", "error", err)
		writeError(w, http.StatusInternalServerError, "api documentation unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// Session endpoints

// handleGetMe godoc
// @Summary      Get current session
// @Description  Returns the signed-in user of the calling tab. When Cognito is disabled an anonymous session is reported instead of 401.
// @Tags         Session
// @Produce      json
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  ErrorResponse  "No valid token"
// @Router       /api/v1/me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	auth, _, err := s.requestAuth(w, r)
	if err != nil {
		s.logger.Error("resolve tab session", "error", err)
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	resp := MeResponse{CognitoEnabled: auth.IsConfigured()}
	tokens := auth.GetTokens(r.Context())
	if tokens == nil {
		if resp.CognitoEnabled {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	user := auth.GetCurrentUser(r.Context())
	resp.Authenticated = true
	resp.ExpiresAt = tokens.ExpiresAt
	if user != nil {
		resp.Email = user.Email
		resp.AuthMode = user.AuthMode()
		resp.Claims = user.Payload
	}
	writeJSON(w, http.StatusOK, resp)
}

// Moderation endpoints

// handleListPendingReviews godoc
// @Summary      List pending reviews
// @Description  Returns reviews awaiting moderation. Requires a Cognito SSO session.
// @Tags         Reviews
// @Produce      json
// @Success      200  {object}  PendingReviewsResponse
// @Failure      401  {object}  ErrorResponse  "No valid token"
// @Failure      403  {object}  ErrorResponse  "Preview password session"
// @Failure      502  {object}  ErrorResponse  "Review API error"
// @Failure      503  {object}  ErrorResponse  "Review API not configured"
// @Router       /api/v1/reviews/pending [get]
func (s *Server) handleListPendingReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.moderation.ListPending(r.Context(), GetViewer(r.Context()))
	if err != nil {
		s.writeModerationError(w, err, "Network error while loading pending reviews.")
		return
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	writeJSON(w, http.StatusOK, PendingReviewsResponse{Reviews: reviews})
}

// handleModerateReview godoc
// @Summary      Moderate a review
// @Description  Approves or rejects a pending review. Requires a Cognito SSO session.
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Review ID"
// @Param        request  body      domain.ModerationRequest  true  "Decision and optional note"
// @Success      200      {object}  domain.ModerationResult
// @Failure      400      {object}  ErrorResponse  "Invalid decision"
// @Failure      401      {object}  ErrorResponse  "No valid token"
// @Failure      403      {object}  ErrorResponse  "Preview password session"
// @Failure      502      {object}  ErrorResponse  "Review API error"
// @Failure      503      {object}  ErrorResponse  "Review API not configured"
// @Router       /api/v1/reviews/{id}/moderate [post]
func (s *Server) handleModerateReview(w http.ResponseWriter, r *http.Request) {
	var req domain.ModerationRequest
	body := http.MaxBytesReader(w, r.Body, maxModerationBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Decision = domain.ModerationDecision(strings.ToLower(strings.TrimSpace(string(req.Decision))))

	result, err := s.moderation.Moderate(r.Context(), GetViewer(r.Context()), r.PathValue("id"), req)
	if err != nil {
		s.writeModerationError(w, err, "Network error while updating review.")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeModerationError(w http.ResponseWriter, err error, fallback string) {
	var apiErr *domain.ReviewAPIError
	switch {
	case errors.Is(err, domain.ErrSSORequired):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrReviewAPINotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrTokenUnavailable):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, apiErr.Error())
	default:
		s.logger.Error("review api request failed", "error", err)
		writeError(w, http.StatusBadGateway, fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
