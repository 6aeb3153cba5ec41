// Package testutil provides in-memory store and notifier doubles for handler
// and middleware tests. They mirror the mongo-backed stores closely enough
// that the controllers cannot tell them apart.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/social"
	"github.com/vaultline/escrowbackend/stores"
	"github.com/vaultline/escrowbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserStore keeps users in a map keyed by hex id.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: map[string]*models.User{}}
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = utils.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, stores.ErrNotFound
}

func (s *UserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, stores.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = utils.NormalizeEmail(user.Email)
	for _, u := range s.users {
		if u.Email == user.Email {
			return stores.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	s.users[user.ID.Hex()] = &clone
	return nil
}

func (s *UserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID.Hex()]; !ok {
		return stores.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	clone := *user
	s.users[user.ID.Hex()] = &clone
	return nil
}

// Count reports how many users the store holds.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// OrganizationStore is the map-backed counterpart for the org identity space.
type OrganizationStore struct {
	mu   sync.Mutex
	orgs map[string]*models.Organization
}

func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{orgs: map[string]*models.Organization{}}
}

func (s *OrganizationStore) FindByEmail(_ context.Context, email string) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = utils.NormalizeEmail(email)
	for _, o := range s.orgs {
		if o.Email == email {
			clone := *o
			return &clone, nil
		}
	}
	return nil, stores.ErrNotFound
}

func (s *OrganizationStore) FindByID(_ context.Context, id string) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[id]
	if !ok {
		return nil, stores.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (s *OrganizationStore) Create(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org.Email = utils.NormalizeEmail(org.Email)
	for _, o := range s.orgs {
		if o.Email == org.Email {
			return stores.ErrDuplicate
		}
	}
	if org.ID.IsZero() {
		org.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	org.CreatedAt = now
	org.UpdatedAt = now
	clone := *org
	s.orgs[org.ID.Hex()] = &clone
	return nil
}

func (s *OrganizationStore) Update(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[org.ID.Hex()]; !ok {
		return stores.ErrNotFound
	}
	org.UpdatedAt = time.Now().UTC()
	clone := *org
	s.orgs[org.ID.Hex()] = &clone
	return nil
}

// SessionStore records sessions in memory and counts GetByID calls so tests
// can assert whether a renewal path was even attempted.
type SessionStore struct {
	mu         sync.Mutex
	sessions   map[string]*models.Session
	GetCalls   int
	CreateErr  error
	LastUserID bson.ObjectID
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*models.Session{}}
}

func (s *SessionStore) Create(_ context.Context, userID bson.ObjectID, userAgent string, role models.Role) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	sess := &models.Session{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		UserAgent: userAgent,
		Role:      role,
		Valid:     true,
		CreatedAt: time.Now().UTC(),
	}
	s.sessions[sess.ID.Hex()] = sess
	s.LastUserID = userID
	return sess, nil
}

func (s *SessionStore) GetByID(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetCalls++
	sess, ok := s.sessions[id]
	if !ok {
		return nil, stores.ErrNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *SessionStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return stores.ErrNotFound
	}
	sess.Valid = false
	return nil
}

func (s *SessionStore) RevokeAllForUser(_ context.Context, userID bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			sess.Valid = false
		}
	}
	return nil
}

// LiveCount reports how many sessions are still valid.
func (s *SessionStore) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.Valid {
			n++
		}
	}
	return n
}

// AuthTokenStore hands out raw tokens and stores only their digests, same as
// the mongo implementation.
type AuthTokenStore struct {
	mu     sync.Mutex
	tokens []*models.AuthToken
}

func NewAuthTokenStore() *AuthTokenStore {
	return &AuthTokenStore{}
}

func (s *AuthTokenStore) Issue(_ context.Context, owner bson.ObjectID, kind models.TokenKind, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tokens[:0]
	for _, t := range s.tokens {
		if !(t.Owner == owner && t.Kind == kind) {
			kept = append(kept, t)
		}
	}
	s.tokens = kept
	raw, err := utils.NewRawToken()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	s.tokens = append(s.tokens, &models.AuthToken{
		ID:        bson.NewObjectID(),
		Owner:     owner,
		Kind:      kind,
		Digest:    utils.HashToken(raw),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	return raw, nil
}

func (s *AuthTokenStore) FindValid(_ context.Context, raw string, kind models.TokenKind) (*models.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	digest := utils.HashToken(raw)
	now := time.Now().UTC()
	for _, t := range s.tokens {
		if t.Digest == digest && t.Kind == kind && t.ExpiresAt.After(now) {
			clone := *t
			return &clone, nil
		}
	}
	return nil, stores.ErrNotFound
}

func (s *AuthTokenStore) Consume(_ context.Context, token *models.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tokens {
		if t.ID == token.ID {
			s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
			return nil
		}
	}
	return stores.ErrNotFound
}

func (s *AuthTokenStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	var removed int64
	kept := s.tokens[:0]
	for _, t := range s.tokens {
		if t.ExpiresAt.After(now) {
			kept = append(kept, t)
		} else {
			removed++
		}
	}
	s.tokens = kept
	return removed, nil
}

// PendingCount reports how many unexpired tokens of the given kind exist.
func (s *AuthTokenStore) PendingCount(kind models.TokenKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	n := 0
	for _, t := range s.tokens {
		if t.Kind == kind && t.ExpiresAt.After(now) {
			n++
		}
	}
	return n
}

// Notifier records every send so tests can pull the raw token or OTP out of
// the "outbox" instead of parsing HTML bodies.
type Notifier struct {
	mu             sync.Mutex
	Verifications  map[string]string // recipient -> raw token
	Resets         map[string]string // recipient -> raw token
	OTPs           map[string]string // recipient -> otp
	Welcomes       []string
	FailVerifySend error
}

func NewNotifier() *Notifier {
	return &Notifier{
		Verifications: map[string]string{},
		Resets:        map[string]string{},
		OTPs:          map[string]string{},
	}
}

func (n *Notifier) SendVerificationEmail(to, rawToken string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailVerifySend != nil {
		return n.FailVerifySend
	}
	n.Verifications[to] = rawToken
	return nil
}

func (n *Notifier) SendPasswordResetEmail(to, rawToken string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Resets[to] = rawToken
	return nil
}

func (n *Notifier) SendOTPEmail(to, otp string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.OTPs[to] = otp
	return nil
}

func (n *Notifier) SendWelcomeEmail(to, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Welcomes = append(n.Welcomes, to)
	return nil
}

// WelcomeCount reports how many welcome emails went out.
func (n *Notifier) WelcomeCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Welcomes)
}

// SocialVerifier returns a canned profile, or ErrInvalidCredential when none
// is set.
type SocialVerifier struct {
	Profile *social.Profile
}

func (v *SocialVerifier) Verify(_ context.Context, _ string) (*social.Profile, error) {
	if v.Profile == nil {
		return nil, social.ErrInvalidCredential
	}
	clone := *v.Profile
	return &clone, nil
}

// SocialPairVerifier is the two-legged variant used by the X flow.
type SocialPairVerifier struct {
	Profile *social.Profile
}

func (v *SocialPairVerifier) Verify(_ context.Context, _, _ string) (*social.Profile, error) {
	if v.Profile == nil {
		return nil, social.ErrInvalidCredential
	}
	clone := *v.Profile
	return &clone, nil
}
