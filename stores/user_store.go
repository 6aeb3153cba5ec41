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

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore is the credential store for the individual identity space.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// NewLocalUser builds a password-backed user with the hash already computed.
// A plaintext password never reaches the store boundary.
func NewLocalUser(email, phoneNumber, password string) (*models.User, error) {
	email = utils.NormalizeEmail(email)
	if !utils.ValidEmail(email) {
		return nil, errors.New("invalid email format")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:        email,
		PhoneNumber:  phoneNumber,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}, nil
}

type mongoUserStore struct {
	col *mongo.Collection
}

func NewUserStore(col *mongo.Collection) UserStore {
	return &mongoUserStore{col: col}
}

func (s *mongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"email": utils.NormalizeEmail(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *mongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var user models.User
	if err := s.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *mongoUserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	user.Email = utils.NormalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *mongoUserStore) Update(ctx context.Context, user *models.User) error {
	user.Email = utils.NormalizeEmail(user.Email)
	user.UpdatedAt = time.Now().UTC()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
