package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the access/refresh pair. Access and refresh
// tokens use distinct secrets and TTLs; the refresh TTL must exceed the
// access TTL by at least one renewal cycle.
type TokenCodec struct {
	secret        []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenCodec(secret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:        []byte(secret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (c *TokenCodec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

func (c *TokenCodec) SignAccess(userID, email, role string) (string, error) {
	return c.SignAccessTTL(userID, email, role, c.accessTTL)
}

// SignAccessTTL signs an access token with an explicit lifetime. Social
// logins hand out longer-lived tokens than the standard pair.
func (c *TokenCodec) SignAccessTTL(userID, email, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *TokenCodec) SignRefresh(userID, role, sessionID string) (string, error) {
	claims := Claims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.refreshSecret)
}

// VerifyAccess distinguishes three outcomes: valid (claims, false, nil),
// expired but structurally intact (claims, true, nil) so the refresh flow can
// run, and invalid (nil, false, err) which must never trigger a refresh.
func (c *TokenCodec) VerifyAccess(tokenStr string) (*Claims, bool, error) {
	return verify(tokenStr, c.secret)
}

func (c *TokenCodec) VerifyRefresh(tokenStr string) (*Claims, bool, error) {
	return verify(tokenStr, c.refreshSecret)
}

func verify(tokenStr string, secret []byte) (*Claims, bool, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && token != nil {
			if claims, ok := token.Claims.(*Claims); ok {
				return claims, true, nil
			}
		}
		return nil, false, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, false, ErrInvalidToken
	}
	return claims, false, nil
}
