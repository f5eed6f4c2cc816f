package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID   int    `json:"user_id"` //nolint:tagliatelle
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

func GetToken(u models.User, ttl time.Duration, secret string) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
		StandardClaims: jwt.StandardClaims{ //nolint:exhaustruct
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	token, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token error: %w", err)
	}

	return token, nil
}

// ValidatePrincipal parses and verifies a token and returns the
// principal it carries.
func ValidatePrincipal(token, secret string) (models.Principal, error) {
	claims := new(Claims)

	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v error: %w", t.Header["alg"], ErrInvalidToken)
		}

		return []byte(secret), nil
	})
	if err != nil {
		return models.Principal{}, fmt.Errorf("parse token error: %w", err)
	}

	if !t.Valid {
		return models.Principal{}, ErrInvalidToken
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return models.Principal{}, fmt.Errorf("unknown role %q error: %w", claims.Role, ErrInvalidToken)
	}

	return models.Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     role,
	}, nil
}
