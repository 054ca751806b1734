package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"estatescout/internal/ids"
	"estatescout/internal/models"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the subject a token is bound to at issuance.
type Identity struct {
	UserID string
	Role   models.UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.UserRoleAdmin
}

type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for issuing and verifying tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func WithTTL(access, refresh time.Duration) TokenOption {
	return func(s *TokenService) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

func NewTokenService(accessSecret, refreshSecret string, opts ...TokenOption) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	s := &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     DefaultAccessTTL,
		refreshTTL:    DefaultRefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) IssueAccessToken(identity Identity) (string, error) {
	return s.issue(identity, s.accessSecret, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(identity Identity) (string, error) {
	return s.issue(identity, s.refreshSecret, s.refreshTTL)
}

// RefreshTTL is the lifetime of refresh tokens, which the refresh cookie mirrors.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *TokenService) issue(identity Identity, secret []byte, ttl time.Duration) (string, error) {
	if identity.UserID == "" {
		return "", errors.New("identity without user id")
	}

	now := s.now()
	claims := Claims{
		UserID: identity.UserID,
		Role:   string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        ids.New(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry against the secret of the given kind.
// Expired tokens fail with ErrTokenExpired, everything else with ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string, kind TokenKind) (Identity, error) {
	var secret []byte
	switch kind {
	case AccessToken:
		secret = s.accessSecret
	case RefreshToken:
		secret = s.refreshSecret
	default:
		return Identity{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidToken, kind)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID: claims.UserID,
		Role:   models.UserRole(claims.Role),
	}, nil
}
