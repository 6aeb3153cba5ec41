package stores

import (
	"context"
	"errors"
	"time"

	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AuthTokenStore holds single-use, digest-stored tokens for password reset
// and email verification. Issue invalidates any prior token of the same kind
// for the owner; Consume deletes exactly once.
type AuthTokenStore interface {
	Issue(ctx context.Context, owner bson.ObjectID, kind models.TokenKind, ttl time.Duration) (string, error)
	FindValid(ctx context.Context, raw string, kind models.TokenKind) (*models.AuthToken, error)
	Consume(ctx context.Context, token *models.AuthToken) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type mongoAuthTokenStore struct {
	col *mongo.Collection
}

func NewAuthTokenStore(col *mongo.Collection) AuthTokenStore {
	return &mongoAuthTokenStore{col: col}
}

func (s *mongoAuthTokenStore) Issue(ctx context.Context, owner bson.ObjectID, kind models.TokenKind, ttl time.Duration) (string, error) {
	raw, err := utils.NewRawToken()
	if err != nil {
		return "", err
	}

	// Only the latest token per owner+kind is ever valid.
	if _, err := s.col.DeleteMany(ctx, bson.M{"owner": owner, "kind": kind}); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	record := &models.AuthToken{
		ID:        bson.NewObjectID(),
		Owner:     owner,
		Kind:      kind,
		Digest:    utils.HashToken(raw),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if _, err := s.col.InsertOne(ctx, record); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *mongoAuthTokenStore) FindValid(ctx context.Context, raw string, kind models.TokenKind) (*models.AuthToken, error) {
	var record models.AuthToken
	err := s.col.FindOne(ctx, bson.M{
		"digest":    utils.HashToken(raw),
		"kind":      kind,
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *mongoAuthTokenStore) Consume(ctx context.Context, token *models.AuthToken) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": token.ID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired sweeps records past expiry. Reads already filter on
// expiresAt, so this is housekeeping, not correctness.
func (s *mongoAuthTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
