// Package v1 provides the business logic for API version 1: authentication
// and the generation workspace (sessions, artifacts, cascading deletion).
//
// Error Handling:
// This package defines sentinel errors that represent the stable failure
// taxonomy of the workspace. They should be wrapped with context using
// fmt.Errorf("%w") when returned from business logic methods.
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrValidation):
//	    c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
//	case errors.Is(err, logicv1.ErrInvalidSession):
//	    c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sessionId"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for workspace operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrUnauthorized indicates a missing, malformed, invalid, or expired
	// bearer credential, or one whose claims lack a user id.
	// HTTP Status: 401 Unauthorized
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates the provided login credentials are
	// incorrect. Deliberately indistinguishable from an unknown email.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists indicates the email is already registered.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")

	// ErrEmailNotFound indicates no account exists for the given email.
	// Only surfaced by the password-reset flow, which mirrors the product's
	// original behavior of confirming email existence there.
	// HTTP Status: 404 Not Found
	ErrEmailNotFound = errors.New("email not found")

	// ErrInvalidResetToken indicates the password-reset token is invalid or
	// expired.
	// HTTP Status: 400 Bad Request
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrValidation indicates a missing or empty required field, detected
	// before any external call.
	// HTTP Status: 400 Bad Request
	ErrValidation = errors.New("validation failed")

	// ErrInvalidSession indicates the referenced session does not exist or is
	// not owned by the caller; the two cases are never distinguished.
	// HTTP Status: 400 Bad Request
	ErrInvalidSession = errors.New("invalid session")

	// ErrNotFound indicates the target row is absent under the caller's owner
	// scope. Intentionally identical for "absent" and "owned by someone else"
	// so existence of other users' resources never leaks.
	// HTTP Status: 404 Not Found
	ErrNotFound = errors.New("not found")

	// ErrProvider indicates the upstream generation provider failed. Nothing
	// has been written when this is returned.
	// HTTP Status: 502 Bad Gateway
	ErrProvider = errors.New("provider failure")
)
