package auth

import (
	"context"
	"fmt"
	"log"

	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/stores"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer mints the token pair for a successful login. A new session backs
// every pair; if the session write fails no tokens leave this package.
type Issuer struct {
	codec    *TokenCodec
	sessions stores.SessionStore
	users    stores.UserStore
}

func NewIssuer(codec *TokenCodec, sessions stores.SessionStore, users stores.UserStore) *Issuer {
	return &Issuer{codec: codec, sessions: sessions, users: users}
}

// Issue creates a session and signs the pair for any principal (individual
// or organization).
func (i *Issuer) Issue(ctx context.Context, principalID bson.ObjectID, email string, role models.Role, userAgent string) (*TokenPair, error) {
	session, err := i.sessions.Create(ctx, principalID, userAgent, role)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	access, err := i.codec.SignAccess(principalID.Hex(), email, string(role))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.codec.SignRefresh(principalID.Hex(), string(role), session.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueForLogin additionally records the refresh token on the user so the
// latest issued token is always on file. That bookkeeping is advisory
// (last write wins), so a failed update does not void the pair.
func (i *Issuer) IssueForLogin(ctx context.Context, user *models.User, userAgent string) (*TokenPair, error) {
	pair, err := i.Issue(ctx, user.ID, user.Email, user.Role, userAgent)
	if err != nil {
		return nil, err
	}

	user.RefreshToken = pair.RefreshToken
	if err := i.users.Update(ctx, user); err != nil {
		log.Printf("failed to record refresh token for %s: %v", user.Email, err)
	}

	return pair, nil
}
