package domain

import "time"

// User is the public shape of an account, returned by auth endpoints.
// The password hash never leaves the domain layer.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is a named grouping of generated artifacts belonging to one user.
type Session struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Generation is a single persisted generation result. Result holds the
// generated text, or the image URI for image artifacts.
type Generation struct {
	ID     int64  `json:"id"`
	Prompt string `json:"prompt"`
	Result string `json:"result"`
}

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest asks for a password-reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest redeems a reset token for a new password.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// AuthResponse carries the issued bearer token and the user it belongs to.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// GenerateRequest submits a prompt to a generation provider. A nil SessionID
// asks the orchestrator to create a new session named after the prompt.
type GenerateRequest struct {
	SessionID *int64 `json:"sessionId"`
	Prompt    string `json:"prompt"`
}

// RenameSessionRequest renames a session.
type RenameSessionRequest struct {
	Name string `json:"name"`
}
