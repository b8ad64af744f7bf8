package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/kreasi-ai/backend/internal/core/domain"
	"github.com/kreasi-ai/backend/internal/mail"
	"github.com/kreasi-ai/backend/middleware"
)

// AuthConfig carries token-signing parameters for the AuthService.
type AuthConfig struct {
	Secret       []byte        // HS256 signing key
	AccessTTL    time.Duration // access token lifetime
	ResetTTL     time.Duration // password-reset token lifetime
	ResetURLBase string        // frontend URL the reset link points to
}

// AuthService implements registration, login, and the password-reset flow.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users  domain.UserRepository
	mailer mail.Mailer
	cfg    AuthConfig
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, mailer mail.Mailer, cfg AuthConfig) *AuthService {
	return &AuthService{users: users, mailer: mailer, cfg: cfg}
}

// accessClaims is the bearer token payload. Field names match the tokens the
// frontend already consumes.
type accessClaims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// resetClaims is the password-reset token payload.
type resetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Register handles user registration business logic.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register %q: %w", req.Email, ErrUserExists)
	}

	userID, err := s.users.Create(ctx, req.Name, req.Email, string(passwordHash))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	token, err := s.issueAccessToken(userID, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return &domain.AuthResponse{
		Token: token,
		User:  domain.User{ID: userID, Name: req.Name, Email: req.Email},
	}, nil
}

// Login handles user login business logic.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Email, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		// hide whether the account exists
		return nil, fmt.Errorf("authenticate %q: %w", req.Email, ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate %q: %w", req.Email, ErrInvalidCredentials)
	}

	token, err := s.issueAccessToken(row.ID, row.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return &domain.AuthResponse{
		Token: token,
		User:  domain.User{ID: row.ID, Name: row.Name, Email: row.Email},
	}, nil
}

// ForgotPassword issues a short-lived reset token, stores it on the user row,
// and mails a reset link. Unknown emails are reported as such; the original
// product confirms email existence on this endpoint.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.forgot_password", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", email),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("query user %q: %w", email, err)
	}
	if row == nil {
		return fmt.Errorf("forgot password for %q: %w", email, ErrEmailNotFound)
	}

	now := time.Now()
	claims := resetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.ResetTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("sign reset token: %w", err)
	}

	if err := s.users.SetResetToken(ctx, email, token); err != nil {
		span.RecordError(err)
		return fmt.Errorf("store reset token: %w", err)
	}

	link := s.cfg.ResetURLBase + "/" + token
	if err := s.mailer.SendPasswordReset(ctx, email, link); err != nil {
		span.RecordError(err)
		return fmt.Errorf("send reset mail: %w", err)
	}

	span.AddEvent("reset_link.sent")
	return nil
}

// ResetPassword redeems a reset token: verifies it, hashes the new password,
// and clears the outstanding token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.reset_password", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if newPassword == "" {
		return fmt.Errorf("reset password: new password is required: %w", ErrValidation)
	}

	var claims resetClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.cfg.Secret, nil
	})
	if err != nil || claims.Email == "" {
		span.SetAttributes(attribute.Bool("reset_token.valid", false))
		return fmt.Errorf("verify reset token: %w", ErrInvalidResetToken)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, claims.Email, string(passwordHash)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("update password: %w", err)
	}

	span.AddEvent("password.reset")
	return nil
}

// Me returns the account behind a bearer token (for the /auth/me endpoint).
func (s *AuthService) Me(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.me", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	userID, err := s.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	row, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %d: %w", userID, err)
	}
	if row == nil {
		return nil, fmt.Errorf("lookup user %d: %w", userID, ErrUnauthorized)
	}

	span.SetAttributes(attribute.Int64("user.id", row.ID))
	return &domain.User{ID: row.ID, Name: row.Name, Email: row.Email}, nil
}

// VerifyAccessToken validates a bearer token and returns the user id bound to
// it. Tokens that are invalid, expired, or carry no user id are rejected.
func (s *AuthService) VerifyAccessToken(token string) (int64, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.cfg.Secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", ErrUnauthorized)
	}
	if claims.UserID == 0 {
		return 0, fmt.Errorf("token payload missing user id: %w", ErrUnauthorized)
	}
	return claims.UserID, nil
}

// issueAccessToken creates a signed HS256 JWT for the given user.
func (s *AuthService) issueAccessToken(userID int64, email string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}
