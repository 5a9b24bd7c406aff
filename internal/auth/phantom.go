package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// Phantom token pattern: the client holds an opaque random token; the signed
// JWT it references lives server-side with a short TTL. Rotating or revoking
// the signed claims never requires touching the client credential.

const (
	phantomTokenBytes = 32
	phantomTTL        = 15 * time.Minute
	phantomKeyPrefix  = "oms:phantom:"
)

// Claims are the signed claims behind a phantom token. No PII beyond ids and
// role is embedded.
type Claims struct {
	Role       string `json:"role"`
	MerchantID int64  `json:"merchant_id"`
	jwt.RegisteredClaims
}

// TokenService issues and resolves phantom token pairs.
type TokenService struct {
	rdb      *redis.Client
	secret   []byte
	issuer   string
	audience string
}

func NewTokenService(rdb *redis.Client, secret, issuer, audience string) *TokenService {
	return &TokenService{rdb: rdb, secret: []byte(secret), issuer: issuer, audience: audience}
}

// CreatePair signs a short-lived JWT for the user and stores it in Redis
// under a fresh opaque token. Returns the phantom token handed to clients.
func (s *TokenService) CreatePair(ctx context.Context, userID, merchantID int64, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:       role,
		MerchantID: merchantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(phantomTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	buf := make([]byte, phantomTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	phantom := hex.EncodeToString(buf)

	if err := s.rdb.Set(ctx, phantomKeyPrefix+phantom, signed, phantomTTL).Err(); err != nil {
		return "", err
	}
	return phantom, nil
}

// Resolve maps a phantom token back to its validated claims. Returns nil for
// unknown, expired, or tampered tokens. Redis TTL handles expiry cleanup.
func (s *TokenService) Resolve(ctx context.Context, phantom string) (*Claims, error) {
	signed, err := s.rdb.Get(ctx, phantomKeyPrefix+phantom).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		// Pin the algorithm — never trust the token header.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil || !token.Valid {
		return nil, nil
	}
	return claims, nil
}

// Revoke removes a phantom token, invalidating the pair immediately.
func (s *TokenService) Revoke(ctx context.Context, phantom string) error {
	return s.rdb.Del(ctx, phantomKeyPrefix+phantom).Err()
}
