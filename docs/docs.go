// Package docs registers the portal's OpenAPI document with swag.
// Keep docTemplate in step with the handler annotations in
// internal/adapters/driving/http.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/me": {
            "get": {
                "description": "Returns the signed-in user of the calling tab. When Cognito is disabled an anonymous session is reported instead of 401.",
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Get current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.MeResponse"}},
                    "401": {"description": "No valid token", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/reviews/pending": {
            "get": {
                "description": "Returns reviews awaiting moderation. Requires a Cognito SSO session.",
                "produces": ["application/json"],
                "tags": ["Reviews"],
                "summary": "List pending reviews",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.PendingReviewsResponse"}},
                    "401": {"description": "No valid token", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "403": {"description": "Preview password session", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Review API error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "Review API not configured", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/reviews/{id}/moderate": {
            "post": {
                "description": "Approves or rejects a pending review. Requires a Cognito SSO session.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Reviews"],
                "summary": "Moderate a review",
                "parameters": [
                    {"type": "string", "description": "Review ID", "name": "id", "in": "path", "required": true},
                    {"description": "Decision and optional note", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ModerationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ModerationResult"}},
                    "400": {"description": "Invalid decision", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "No valid token", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "403": {"description": "Preview password session", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Review API error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "Review API not configured", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns the health status of the portal",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatusResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Returns the readiness status of the portal (checks session storage)",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatusResponse"}},
                    "503": {"description": "Session storage unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "description": "Returns the current build version",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Get portal version",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.VersionResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.ModerationRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["approved", "rejected"]},
                "note": {"type": "string"}
            }
        },
        "domain.ModerationResult": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["approved", "rejected"]},
                "message": {"type": "string"},
                "review_id": {"type": "string"}
            }
        },
        "domain.Review": {
            "type": "object",
            "properties": {
                "company": {"type": "string"},
                "contains_markup": {"type": "boolean"},
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "linkedin": {"type": "string"},
                "name": {"type": "string"},
                "rating": {},
                "review": {"type": "string"},
                "review_id": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "description": "API error response",
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Authentication token unavailable. Please sign in again."}
            }
        },
        "http.MeResponse": {
            "description": "Current tab session",
            "type": "object",
            "properties": {
                "authMode": {"type": "string", "example": "preview_password"},
                "authenticated": {"type": "boolean", "example": true},
                "claims": {"type": "object", "additionalProperties": {}},
                "cognitoEnabled": {"type": "boolean", "example": true},
                "email": {"type": "string", "example": "jane@waterapps.com.au"},
                "expiresAt": {"type": "integer", "example": 1700003600}
            }
        },
        "http.PendingReviewsResponse": {
            "description": "Pending reviews",
            "type": "object",
            "properties": {
                "reviews": {"type": "array", "items": {"$ref": "#/definitions/domain.Review"}}
            }
        },
        "http.StatusResponse": {
            "description": "Simple status response",
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"}
            }
        },
        "http.VersionResponse": {
            "description": "API version response",
            "type": "object",
            "properties": {
                "version": {"type": "string", "example": "1.0.0"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "WaterApps Portal API",
	Description:      "Session and review moderation API of the WaterApps management portal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
