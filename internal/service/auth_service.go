package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"estatescout/internal/ids"
	"estatescout/internal/models"
	"estatescout/internal/repository"
	"estatescout/internal/security"
)

type AuthService struct {
	users    repository.UserStore
	tokens   *security.TokenService
	hashCost int
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(users repository.UserStore, tokens *security.TokenService, hashCost int, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hashCost: hashCost,
		log:      log,
	}
}

type RegisterInput struct {
	Email          string
	Password       string
	Name           string
	Phone          string
	ProfilePicture string
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" || strings.TrimSpace(input.Name) == "" {
		return AuthResult{}, fmt.Errorf("%w: email, password and name are required", ErrInvalidInput)
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrConflict
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := security.HashPassword(input.Password, s.hashCost)
	if err != nil {
		return AuthResult{}, err
	}

	now := time.Now().UTC()
	user := models.User{
		ID:             ids.New(),
		Email:          input.Email,
		PasswordHash:   hash,
		Name:           strings.TrimSpace(input.Name),
		Phone:          input.Phone,
		ProfilePicture: input.ProfilePicture,
		Role:           models.UserRoleAgent,
		Posts:          []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration won the unique index.
		if errors.Is(err, repository.ErrEmailTaken) {
			return AuthResult{}, ErrConflict
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.issuePair(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same hashing time as a real mismatch.
			_, _ = security.VerifyPassword(password, s.placeholderHash())
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issuePair(user)
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is not rotated.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", ErrUnauthorized
	}

	identity, err := s.tokens.Verify(refreshToken, security.RefreshToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("refresh token rejected")
		return "", ErrForbidden
	}

	token, err := s.tokens.IssueAccessToken(identity)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer access token to its identity. An expired
// token is ErrUnauthorized so clients know to refresh; any other failure is
// ErrForbidden.
func (s *AuthService) Authenticate(accessToken string) (security.Identity, error) {
	identity, err := s.tokens.Verify(accessToken, security.AccessToken)
	if errors.Is(err, security.ErrTokenExpired) {
		return security.Identity{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if err != nil {
		return security.Identity{}, fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return identity, nil
}

func (s *AuthService) RefreshTTLSeconds() int {
	return int(s.tokens.RefreshTTL().Seconds())
}

func (s *AuthService) issuePair(user models.User) (AuthResult, error) {
	identity := security.Identity{UserID: user.ID, Role: user.Role}

	access, err := s.tokens.IssueAccessToken(identity)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(identity)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}

func (s *AuthService) placeholderHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := security.HashPassword(ids.New(), s.hashCost)
		if err != nil {
			s.log.Error().Err(err).Msg("placeholder hash failed")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
