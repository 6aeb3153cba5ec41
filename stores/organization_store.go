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

// OrganizationStore is the credential store for the organizational identity
// space. Signup consults it so an email can never exist in both spaces.
type OrganizationStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Organization, error)
	FindByID(ctx context.Context, id string) (*models.Organization, error)
	Create(ctx context.Context, org *models.Organization) error
	Update(ctx context.Context, org *models.Organization) error
}

// NewOrganization hashes the password before the record can be persisted.
func NewOrganization(email, companyName, password string) (*models.Organization, error) {
	email = utils.NormalizeEmail(email)
	if !utils.ValidEmail(email) {
		return nil, errors.New("invalid email format")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.Organization{
		Email:        email,
		CompanyName:  companyName,
		PasswordHash: hash,
		Role:         models.RoleOrg,
	}, nil
}

type mongoOrganizationStore struct {
	col *mongo.Collection
}

func NewOrganizationStore(col *mongo.Collection) OrganizationStore {
	return &mongoOrganizationStore{col: col}
}

func (s *mongoOrganizationStore) FindByEmail(ctx context.Context, email string) (*models.Organization, error) {
	var org models.Organization
	err := s.col.FindOne(ctx, bson.M{"email": utils.NormalizeEmail(email)}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (s *mongoOrganizationStore) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var org models.Organization
	if err := s.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&org); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (s *mongoOrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	now := time.Now().UTC()
	if org.ID.IsZero() {
		org.ID = bson.NewObjectID()
	}
	org.Email = utils.NormalizeEmail(org.Email)
	org.CreatedAt = now
	org.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, org); err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *mongoOrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	org.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": org.ID}, org)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
