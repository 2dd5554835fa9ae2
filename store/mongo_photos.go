package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"photoshare/models"
)

type MongoPhotos struct {
	coll *mongo.Collection
}

func NewMongoPhotos(coll *mongo.Collection) *MongoPhotos {
	return &MongoPhotos{coll: coll}
}

var _ PhotoStore = (*MongoPhotos)(nil)

func (s *MongoPhotos) Create(ctx context.Context, p *models.Photo) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	// $push on a null field fails, so the array must exist from the start.
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	_, err := s.coll.InsertOne(ctx, p)
	return wrapErr(err, "insert photo")
}

func (s *MongoPhotos) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	var p models.Photo
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, wrapErr(err, "find photo")
	}
	return &p, nil
}

func (s *MongoPhotos) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Photo, error) {
	if len(ids) == 0 {
		return []models.Photo{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *MongoPhotos) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Photo, error) {
	return s.find(ctx, bson.M{"user_id": ownerID})
}

func (s *MongoPhotos) ListMentioning(ctx context.Context, userID primitive.ObjectID) ([]models.Photo, error) {
	return s.find(ctx, bson.M{"comments.mentions.user_id": userID})
}

func (s *MongoPhotos) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr(err, "delete photo")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPhotos) DeleteByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"user_id": ownerID})
	if err != nil {
		return 0, wrapErr(err, "delete photos of owner")
	}
	return res.DeletedCount, nil
}

func (s *MongoPhotos) PushComment(ctx context.Context, photoID primitive.ObjectID, c models.Comment) error {
	if c.Mentions == nil {
		c.Mentions = []models.Mention{}
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": photoID},
		bson.M{"$push": bson.M{"comments": c}},
	)
	if err != nil {
		return wrapErr(err, "push comment")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPhotos) PullComment(ctx context.Context, photoID, commentID, authorID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": photoID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID, "user_id": authorID}}},
	)
	if err != nil {
		return wrapErr(err, "pull comment")
	}
	if res.ModifiedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPhotos) PullCommentsByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"comments.user_id": authorID},
		bson.M{"$pull": bson.M{"comments": bson.M{"user_id": authorID}}},
	)
	if err != nil {
		return 0, wrapErr(err, "pull comments of author")
	}
	return res.ModifiedCount, nil
}

func (s *MongoPhotos) find(ctx context.Context, filter bson.M) ([]models.Photo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr(err, "find photos")
	}
	defer cursor.Close(ctx)

	photos := []models.Photo{}
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, wrapErr(err, "decode photos")
	}
	return photos, nil
}
