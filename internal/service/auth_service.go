package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tasklist/internal/auth"
	apperrors "tasklist/internal/errors"
	"tasklist/internal/model"
	"tasklist/internal/repository"
)

const bcryptCost = 10

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string, termsAccepted bool) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	throttle   auth.LoginThrottle
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, throttle auth.LoginThrottle) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		throttle:   throttle,
	}
}

// Register creates a new user with a hashed password and issues a token.
// Emails are stored lowercased, so duplicate checks are case-insensitive.
func (s *authService) Register(ctx context.Context, name, email, password string, termsAccepted bool) (*model.User, string, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", apperrors.ErrUserExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:          name,
		Email:         email,
		PasswordHash:  string(hashedPassword),
		TermsAccepted: termsAccepted,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// the unique index catches registrations racing past the pre-check
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.ErrUserExists
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a bearer token. Failed attempts
// feed the throttle; a success clears it.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)

	if err := s.throttle.Check(ctx, email); err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.throttle.RecordFailure(ctx, email)
			return nil, "", apperrors.ErrUserNotFound
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		_ = s.throttle.RecordFailure(ctx, email)
		return nil, "", apperrors.ErrInvalidCredentials
	}

	_ = s.throttle.RecordSuccess(ctx, email)

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// Logout is advisory. Tokens are stateless and expire on their own; the
// client discards its copy and this call only acknowledges the event.
func (s *authService) Logout(ctx context.Context) error {
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
