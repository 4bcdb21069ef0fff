package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adepa-commerce/storefront-backend/internal/session"
	"github.com/adepa-commerce/storefront-backend/internal/users"
	pkgauth "github.com/adepa-commerce/storefront-backend/pkg/auth"
	"github.com/adepa-commerce/storefront-backend/pkg/config"
	"github.com/adepa-commerce/storefront-backend/pkg/db"
	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
	pkgerrors "github.com/adepa-commerce/storefront-backend/pkg/errors"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
	"github.com/adepa-commerce/storefront-backend/pkg/security"
)

type userRepo interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RegisterInput carries the sign-up payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput carries the sign-in payload.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResponse is returned on register and login. The session id inside the
// token namespaces all checkout state for this browsing context.
type AuthResponse struct {
	Token     string        `json:"token"`
	SessionID string        `json:"session_id"`
	User      users.UserDTO `json:"user"`
}

// Service handles identity and the session lifecycle around it.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	// Logout purges every session record so the next sign-in starts from a
	// fresh browsing context.
	Logout(ctx context.Context, sessionID string) error
}

type service struct {
	repo     userRepo
	sessions session.Store
	jwt      config.JWTConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the auth dependencies.
func NewService(repo userRepo, sessions session.Store, jwt config.JWTConfig, password config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &service{
		repo:     repo,
		sessions: sessions,
		jwt:      jwt,
		password: password,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	if err := validateRegister(input); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.issueSession(ctx, user)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), fmt.Sprintf("touch last login: %v", err))
	}

	return s.issueSession(ctx, user)
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.sessions.Purge(ctx, sessionID); err != nil {
		// Purge failures fall back to record TTL expiry.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), fmt.Sprintf("purging session on logout: %v", err))
		}
	}
	return nil
}

// issueSession mints a fresh session id per sign-in so two accounts in the
// same browser never share checkout state.
func (s *service) issueSession(ctx context.Context, user *models.User) (*AuthResponse, error) {
	sessionID := session.NewSessionID()
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID:    user.ID,
		IsAdmin:   user.IsAdmin,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "session issued")
	}
	return &AuthResponse{
		Token:     token,
		SessionID: sessionID,
		User:      users.ToDTO(user),
	}, nil
}

func validateRegister(input RegisterInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "is required"
	}
	if strings.TrimSpace(input.Email) == "" || !strings.Contains(input.Email, "@") {
		details["email"] = "must be a valid email"
	}
	if len(input.Password) < 8 {
		details["password"] = "must be at least 8 characters"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid registration").WithDetails(details)
	}
	return nil
}
