package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eduhub/api/internal/config"
	"eduhub/api/internal/ids"
	"eduhub/api/internal/models"
	"eduhub/api/internal/repository"
	"eduhub/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserSuspended      = errors.New("user suspended")
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	GetByDevice(ctx context.Context, userID, deviceID string) (models.Session, error)
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	DeleteByDevice(ctx context.Context, userID, deviceID string) error
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	DeviceID     string
	User         models.User
}

// EnsureAdmin seeds the configured back-office account if no user with
// that email exists yet. There is no self-service registration.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	email := strings.TrimSpace(strings.ToLower(s.cfg.Admin.Email))
	if email == "" || s.cfg.Admin.Password == "" {
		s.log.Warn().Msg("admin bootstrap skipped: no credentials configured")
		return nil
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := security.HashPassword(s.cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  s.cfg.Admin.Name,
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	s.log.Info().Str("email", email).Msg("admin account seeded")
	return nil
}

type LoginInput struct {
	Email      string
	Password   string
	DeviceID   string
	DeviceName string
	IPAddress  string
	UserAgent  string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if user.Status != models.UserStatusActive {
		return AuthResult{}, ErrUserSuspended
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	deviceID := input.DeviceID
	if deviceID == "" {
		deviceID = ids.New()
	}
	deviceName := input.DeviceName
	if deviceName == "" {
		deviceName = "Unknown Device"
	}

	return s.createSession(ctx, user, deviceID, deviceName, input.IPAddress, input.UserAgent)
}

type RefreshInput struct {
	UserID       string
	DeviceID     string
	RefreshToken string
}

func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (AuthResult, error) {
	session, err := s.sessions.GetByDevice(ctx, input.UserID, input.DeviceID)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	presented := security.HashRefreshToken(input.RefreshToken)
	if subtle.ConstantTimeCompare(presented, session.RefreshTokenHash) != 1 {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return AuthResult{}, ErrUserSuspended
	}

	return s.createSession(ctx, user, session.DeviceID, session.DeviceName, session.IPAddress, session.UserAgent)
}

func (s *AuthService) Logout(ctx context.Context, userID, deviceID string) error {
	return s.sessions.DeleteByDevice(ctx, userID, deviceID)
}

func (s *AuthService) Sessions(ctx context.Context, userID string) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

func (s *AuthService) RevokeSession(ctx context.Context, userID, deviceID string) error {
	return s.sessions.DeleteByDevice(ctx, userID, deviceID)
}

func (s *AuthService) createSession(
	ctx context.Context,
	user models.User,
	deviceID, deviceName, ipAddress, userAgent string,
) (AuthResult, error) {
	refreshToken, refreshHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return AuthResult{}, err
	}

	session := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		DeviceID:         deviceID,
		DeviceName:       deviceName,
		RefreshTokenHash: refreshHash,
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
		ExpiresAt:        time.Now().Add(s.cfg.Security.RefreshTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		session.ID,
		deviceID,
		string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		DeviceID:     deviceID,
		User:         user,
	}, nil
}
