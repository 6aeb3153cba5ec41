package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vaultline/escrowbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SeedAdminUser makes sure the configured admin account exists. Admins are
// only ever created here; the social paths refuse the role outright.
func SeedAdminUser(ctx context.Context, usersCol *mongo.Collection, adminEmail, adminPassword string) error {
	email := NormalizeEmail(adminEmail)
	if email == "" || adminPassword == "" {
		return fmt.Errorf("missing ADMIN_EMAIL or ADMIN_PASSWORD env vars")
	}

	hash, err := HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()

	// Only insert if it doesn't exist
	filter := bson.M{"email": email}
	update := bson.M{
		"$setOnInsert": bson.M{
			"email":         email,
			"passwordHash":  hash,
			"role":          models.RoleAdmin,
			"emailVerified": true,
			"createdAt":     now,
			"updatedAt":     now,
		},
	}

	opts := options.UpdateOne().SetUpsert(true)

	res, err := usersCol.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("seed admin upsert failed: %w", err)
	}

	if res.UpsertedCount == 1 {
		log.Println("Admin user seeded:", email)
	} else {
		log.Println("Admin user already exists:", email)
	}

	return nil
}
