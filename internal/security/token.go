package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rentaltracker-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	issuer   = "rentaltracker"
	audience = "rentaltracker-api"
)

// SessionClaims identifies the signed-in account and carries the anti-forgery
// token that state-changing requests must echo back.
type SessionClaims struct {
	UserID int32       `json:"user_id"`
	Role   domain.Role `json:"role"`
	Name   string      `json:"name"`
	CSRF   string      `json:"csrf"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) Actor() domain.Actor {
	return domain.Actor{UserID: c.UserID, Role: c.Role, Name: c.Name}
}

type TokenManager interface {
	// GenerateSessionToken signs a session for user with a fresh CSRF token.
	GenerateSessionToken(user *domain.User) (token string, csrf string, err error)
	ValidateToken(tokenString string) (*SessionClaims, error)
}

type tokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateSessionToken(user *domain.User) (string, string, error) {
	now := m.now()
	csrf := uuid.NewString()
	claims := SessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		CSRF:   csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(user.ID)),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}
	return signed, csrf, nil
}

func (m *tokenManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == 0 || claims.CSRF == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
