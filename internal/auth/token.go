package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Socket tokens carry an established session across the WebSocket handshake,
// so the relay binds roles from server-signed state rather than trusting the
// first frame of an already-authenticated browser tab.

type Claims struct {
	User  string `json:"user"`
	Role  string `json:"role"`
	Color string `json:"color"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// MintSocketToken signs a short-lived token for an established session.
func MintSocketToken(session Session, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		User:  session.Name,
		Role:  session.Role,
		Color: session.Color,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Name,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSocketToken validates a socket token and returns the session it carries.
func ParseSocketToken(tokenStr, secret string) (Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Session{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Session{}, ErrInvalidToken
	}
	return Session{Name: claims.User, Role: claims.Role, Color: claims.Color}, nil
}
