package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type TokenKind string

const (
	TokenKindPasswordReset TokenKind = "password_reset"
	TokenKindEmailVerify   TokenKind = "email_verify"
)

// AuthToken is a single-use token for password reset and email verification.
// Only the SHA-256 digest is stored; the raw value goes out once by email and
// is never retrievable again.
type AuthToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Owner     bson.ObjectID `bson:"owner"`
	Kind      TokenKind     `bson:"kind"`
	Digest    string        `bson:"digest"`
	ExpiresAt time.Time     `bson:"expiresAt"`
	CreatedAt time.Time     `bson:"createdAt"`
}

// Expired checks the expiry explicitly; we do not rely on a store-side TTL.
func (t *AuthToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
