package stores

import (
	"context"
	"errors"
	"time"

	"github.com/vaultline/escrowbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// SessionStore anchors refresh tokens. Every successful login creates a new
// session, so each device/login event can be revoked independently. GetByID
// is the sole authority consulted during refresh redemption.
type SessionStore interface {
	Create(ctx context.Context, userID bson.ObjectID, userAgent string, role models.Role) (*models.Session, error)
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID bson.ObjectID) error
}

type mongoSessionStore struct {
	col *mongo.Collection
}

func NewSessionStore(col *mongo.Collection) SessionStore {
	return &mongoSessionStore{col: col}
}

func (s *mongoSessionStore) Create(ctx context.Context, userID bson.ObjectID, userAgent string, role models.Role) (*models.Session, error) {
	session := &models.Session{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		UserAgent: userAgent,
		Role:      role,
		Valid:     true,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.col.InsertOne(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *mongoSessionStore) GetByID(ctx context.Context, id string) (*models.Session, error) {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var session models.Session
	if err := s.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *mongoSessionStore) Revoke(ctx context.Context, id string) error {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.UpdateByID(ctx, objID, bson.M{"$set": bson.M{"valid": false}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoSessionStore) RevokeAllForUser(ctx context.Context, userID bson.ObjectID) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{"userId": userID, "valid": true},
		bson.M{"$set": bson.M{"valid": false}},
	)
	return err
}
