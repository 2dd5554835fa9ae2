package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"photoshare/models"
)

// MongoFavorites relies on the unique (user_id, photo_id) index created by
// database.EnsureIndexes; there is no read-before-insert check.
type MongoFavorites struct {
	coll *mongo.Collection
}

func NewMongoFavorites(coll *mongo.Collection) *MongoFavorites {
	return &MongoFavorites{coll: coll}
}

var _ FavoriteStore = (*MongoFavorites)(nil)

func (s *MongoFavorites) Create(ctx context.Context, f *models.Favorite) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, f)
	return wrapErr(err, "insert favorite")
}

func (s *MongoFavorites) Delete(ctx context.Context, userID, photoID primitive.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID, "photo_id": photoID})
	return wrapErr(err, "delete favorite")
}

func (s *MongoFavorites) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, wrapErr(err, "find favorites")
	}
	defer cursor.Close(ctx)

	favorites := []models.Favorite{}
	if err := cursor.All(ctx, &favorites); err != nil {
		return nil, wrapErr(err, "decode favorites")
	}
	return favorites, nil
}
