package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"photoshare/models"
)

type MongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(coll *mongo.Collection) *MongoUsers {
	return &MongoUsers{coll: coll}
}

var _ UserStore = (*MongoUsers)(nil)

func (s *MongoUsers) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, u)
	return wrapErr(err, "insert user")
}

func (s *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, wrapErr(err, "find user")
	}
	return &u, nil
}

func (s *MongoUsers) FindByLoginName(ctx context.Context, loginName string) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"login_name": loginName}).Decode(&u); err != nil {
		return nil, wrapErr(err, "find user by login name")
	}
	return &u, nil
}

func (s *MongoUsers) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (s *MongoUsers) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}})
	return s.find(ctx, bson.M{}, opts)
}

func (s *MongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr(err, "delete user")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr(err, "find users")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, wrapErr(err, "decode users")
	}
	return users, nil
}
