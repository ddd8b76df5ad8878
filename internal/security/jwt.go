package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "job-portal"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// SessionClaims is the payload of a company session token.
type SessionClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// SessionTokens issues and verifies HS256 company session tokens.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionTokens(secret string, ttl time.Duration) (*SessionTokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("security: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionTokens{secret: []byte(secret), ttl: ttl}, nil
}

func (s *SessionTokens) Generate(companyID string) (string, error) {
	return s.GenerateWithDuration(companyID, s.ttl)
}

// GenerateWithDuration issues a token with a custom lifetime; a negative d yields an expired token.
func (s *SessionTokens) GenerateWithDuration(companyID string, d time.Duration) (string, error) {
	now := time.Now()
	c := SessionClaims{
		ID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   companyID,
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("security: signing token: %w", err)
	}
	return signed, nil
}

// Validate returns the company id carried by a token signed with our secret.
func (s *SessionTokens) Validate(token string) (string, error) {
	t, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	c, ok := t.Claims.(*SessionClaims)
	if !ok || !t.Valid {
		return "", ErrTokenInvalid
	}
	id := c.ID
	if id == "" {
		id = c.Subject
	}
	if id == "" {
		return "", fmt.Errorf("%w: no company id", ErrTokenInvalid)
	}
	return id, nil
}
