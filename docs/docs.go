// Package docs registers the Swagger specification served at /swagger in development.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Check if the API is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/auth/signup": {
            "post": {
                "description": "Create an unverified account, start a session and email a 6-digit verification code.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign up",
                "parameters": [
                    {"description": "Signup data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "400": {"description": "Missing fields, invalid email or account exists", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}}
                }
            }
        },
        "/api/auth/verify-email": {
            "post": {
                "description": "Verify the account holding a non-expired verification code.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verify email address",
                "parameters": [
                    {"description": "Verification code", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.VerifyEmailRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "400": {"description": "Invalid or expired code", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "Authenticate with email and password; the session token is set as an HTTP-only cookie.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "400": {"description": "Missing fields or invalid credentials", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "description": "Clear the session cookie and revoke the session when one is presented.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}}
                }
            }
        },
        "/api/auth/forgot-password": {
            "post": {
                "description": "Email a reset link valid for one hour.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Request password reset",
                "parameters": [
                    {"description": "Email address", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.ForgotPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "400": {"description": "Email missing", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "404": {"description": "Unknown email", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}}
                }
            }
        },
        "/api/auth/reset-password/{token}": {
            "post": {
                "description": "Set a new password using the token from the reset link. All sessions are revoked.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Reset password",
                "parameters": [
                    {"type": "string", "description": "Reset token", "name": "token", "in": "path", "required": true},
                    {"description": "New password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.ResetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "400": {"description": "Password missing or token invalid/expired", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}}
                }
            }
        },
        "/api/auth/check-auth": {
            "get": {
                "description": "Return the account behind the session cookie.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Check session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "401": {"description": "No or invalid session", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "404": {"description": "Account no longer exists", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}}
                }
            }
        },
        "/api/auth/resend-verification": {
            "post": {
                "description": "Issue a new 24-hour verification code to the signed-in, unverified account.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Resend verification code",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "400": {"description": "Already verified", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "401": {"description": "No or invalid session", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "404": {"description": "Account no longer exists", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/auth.EnvelopeResponse"}}
                }
            }
        }
    },
    "definitions": {
        "auth.AccountResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "isVerified": {"type": "boolean"},
                "lastLogin": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "auth.EnvelopeResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/auth.AccountResponse"}
            }
        },
        "auth.SignupRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.VerifyEmailRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"}
            }
        },
        "auth.ForgotPasswordRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"}
            }
        },
        "auth.ResetPasswordRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "CookieAuth": {
            "type": "apiKey",
            "name": "token",
            "in": "cookie"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Authflow API",
	Description:      "Email and password authentication with verification codes, password reset and cookie sessions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
