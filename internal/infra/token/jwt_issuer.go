package token

import (
	"errors"
	"time"

	"bookstore/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// HS256でアクセストークンを発行する
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

// claims: sub / role / tv / jti / iat / exp
func (i *JWTIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}

	exp := now.Add(i.ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"tv":   tokenVersion,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
