package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	minSecretLength = 32
	defaultTokenTTL = 30 * 24 * time.Hour

	secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	ErrInvalidSecret = errors.New("secret key must be at least 32 characters and not a placeholder")
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidUserID = errors.New("user id is required")
)

var placeholderSecrets = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if err := ValidateSecret(secret); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs an HS256 token whose subject is the user id.
func (issuer *Issuer) Issue(userID string) (string, error) {
	if !validUserID(userID) {
		return "", ErrInvalidUserID
	}
	now := issuer.now()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(issuer.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(issuer.secret)
}

// Parse verifies the token and returns its subject.
func (issuer *Issuer) Parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return issuer.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(issuer.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if !validUserID(claims.Subject) {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (issuer *Issuer) TTL() time.Duration {
	return issuer.ttl
}

func ValidateSecret(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if len(trimmed) < minSecretLength {
		return ErrInvalidSecret
	}
	if _, ok := placeholderSecrets[strings.ToLower(trimmed)]; ok {
		return ErrInvalidSecret
	}
	return nil
}

// GenerateSecret returns a random secret suitable for SECRET_KEY.
func GenerateSecret() (string, error) {
	limit := big.NewInt(int64(len(secretAlphabet)))
	value := make([]byte, 2*minSecretLength)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = secretAlphabet[position.Int64()]
	}
	return string(value), nil
}

func validUserID(userID string) bool {
	trimmed := strings.TrimSpace(userID)
	return trimmed != "" && trimmed == userID && !strings.Contains(userID, "/")
}
