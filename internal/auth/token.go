package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims issued by the external auth service.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenProvider signs users in from HS256 bearer tokens.
type TokenProvider struct {
	broadcaster
	secret []byte
}

var _ Provider = (*TokenProvider)(nil)

// NewTokenProvider returns a provider in the loading state.
func NewTokenProvider(secret string) *TokenProvider {
	return &TokenProvider{
		broadcaster: broadcaster{state: State{IsLoading: true}},
		secret:      []byte(secret),
	}
}

// SignIn verifies token and publishes the user it names. A rejected token
// publishes the signed-out state.
func (p *TokenProvider) SignIn(token string) (User, error) {
	u, err := ParseToken(p.secret, token)
	if err != nil {
		p.publish(State{})
		return User{}, err
	}
	p.publish(signedIn(u))
	return u, nil
}

// SignOut publishes the signed-out state.
func (p *TokenProvider) SignOut() {
	p.publish(State{})
}

// IssueToken signs a token for u valid for ttl.
func IssueToken(secret []byte, u User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: u.Email,
		Name:  u.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates token and returns the user it names.
func ParseToken(secret []byte, token string) (User, error) {
	if len(secret) == 0 {
		return User{}, errors.New("auth secret is not configured")
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return User{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return User{}, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return User{}, errors.New("token has no subject")
	}
	return User{ID: claims.Subject, Email: claims.Email, DisplayName: claims.Name}, nil
}
