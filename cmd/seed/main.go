package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/craftfolio/craftfolio-api/config"
	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	"github.com/craftfolio/craftfolio-api/internal/infrastructure/mongodb"
	"github.com/craftfolio/craftfolio-api/pkg/helpers"
)

// Seeds the bootstrap super admin across both stores. Idempotent: re-running
// updates the existing row instead of duplicating it.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	profiles := mongoClient.Database(cfg.MongoDatabase).Collection("profiles")

	email := "admin@craftfolio.dev"
	password := "changeme-now"
	username := "craftfolio-admin"

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	crossRef := helpers.NewCrossRef()
	friendlyID, err := helpers.NewFriendlyID(username)
	if err != nil {
		log.Fatalf("failed to build friendly id: %v", err)
	}

	var storedCrossRef string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, cross_ref, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING cross_ref
	`, email, hash, crossRef, entity.RoleSuperAdmin).Scan(&storedCrossRef)
	if err != nil {
		log.Fatalf("failed to seed super admin row: %v", err)
	}

	now := time.Now().UTC()
	_, err = profiles.UpdateOne(ctx,
		bson.M{"cross_ref": storedCrossRef},
		bson.M{
			"$setOnInsert": bson.M{
				"cross_ref":         storedCrossRef,
				"friendly_id":       friendlyID,
				"username":          username,
				"completed_profile": false,
				"active":            true,
				"created_at":        now,
			},
			"$set": bson.M{"updated_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Fatalf("failed to seed super admin profile: %v", err)
	}

	fmt.Printf("seeded super admin: email=%s cross_ref=%s password=%s\n", email, storedCrossRef, password)
}
