// Package auth issues and verifies the bearer tokens of the admin API.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
)

const issuer = "orrisdesk"

var (
	ErrMissingSecret = errors.New("admin jwt secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims identify an operator. An empty GuildIDs grants every guild.
type Claims struct {
	Operator string   `json:"operator"`
	GuildIDs []string `json:"guild_ids,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessGuild reports whether the token is scoped to guildID.
func (c *Claims) CanAccessGuild(guildID string) bool {
	return len(c.GuildIDs) == 0 || slices.Contains(c.GuildIDs, guildID)
}

type JWTService struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs an HS256 token for operator, optionally restricted to guilds.
func (s *JWTService) Issue(operator string, guildIDs []string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}
	if operator == "" {
		return "", time.Time{}, fmt.Errorf("operator is required")
	}

	now := biztime.NowUTC()
	exp := now.Add(s.ttl)
	claims := &Claims{
		Operator: operator,
		GuildIDs: guildIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   operator,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, exp, nil
}

func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
