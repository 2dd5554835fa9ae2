package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"photoshare/logger"
)

const (
	UsersCollection     = "users"
	PhotosCollection    = "photos"
	FavoritesCollection = "favorites"
)

type DB struct {
	Client    *mongo.Client
	Users     *mongo.Collection
	Photos    *mongo.Collection
	Favorites *mongo.Collection
}

// Connect dials MongoDB, retrying a few times so the server survives a
// database that is still starting.
func Connect(ctx context.Context, uri, dbName string) (*DB, error) {
	var client *mongo.Client
	var lastErr error

	for attempt := 1; attempt <= 3; attempt++ {
		client, lastErr = dial(ctx, uri)
		if lastErr == nil {
			break
		}
		logger.Log.Warn("MongoDB connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("connect mongo: %w", lastErr)
	}

	db := client.Database(dbName)
	logger.Log.Info("Connected to MongoDB", zap.String("database", dbName))

	return &DB{
		Client:    client,
		Users:     db.Collection(UsersCollection),
		Photos:    db.Collection(PhotosCollection),
		Favorites: db.Collection(FavoritesCollection),
	}, nil
}

func dial(ctx context.Context, uri string) (*mongo.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes the stores depend on. The two unique
// indexes are what make login names and favorite pairs race-free.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	groups := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{d.Users, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "login_name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_login_name"),
		}}},
		{d.Photos, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date_time", Value: -1}},
				Options: options.Index().SetName("owner_date"),
			},
			{
				Keys:    bson.D{{Key: "comments.mentions.user_id", Value: 1}},
				Options: options.Index().SetName("mentioned_users"),
			},
			{
				Keys:    bson.D{{Key: "comments.user_id", Value: 1}},
				Options: options.Index().SetName("comment_authors"),
			},
		}},
		{d.Favorites, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "photo_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_user_photo"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date_time", Value: -1}},
				Options: options.Index().SetName("user_date"),
			},
		}},
	}

	for _, g := range groups {
		names, err := g.coll.Indexes().CreateMany(ctx, g.models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", g.coll.Name(), err)
		}
		logger.Log.Info("Indexes ready",
			zap.String("collection", g.coll.Name()),
			zap.Strings("indexes", names),
		)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

func (d *DB) Disconnect(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := d.Client.Disconnect(ctx); err != nil {
		return err
	}
	logger.Log.Info("Disconnected from MongoDB")
	return nil
}
