// JWT token generation/validation

package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "verse-courier"

var ErrMissingSecret = errors.New("JWT_SECRET not set")

// Claims identifies the chat gateway calling the API.
type Claims struct {
	Gateway string `json:"gateway"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a gateway token valid for ttl.
func GenerateJWT(secret, gateway string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := Claims{
		Gateway: gateway,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   gateway,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT validates and parses a gateway token
func ValidateJWT(secret, tokenStr string) (*Claims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}
