// Package store persists users, photos (with their embedded comments and
// mentions) and favorites.
//
// Implementations report absence with ErrNotFound and uniqueness violations
// with ErrDuplicate; callers never see driver errors for those two cases.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"photoshare/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type UserStore interface {
	// Create inserts u, assigning an id when u.ID is zero.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByLoginName(ctx context.Context, loginName string) (*models.User, error)
	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PhotoStore interface {
	Create(ctx context.Context, p *models.Photo) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Photo, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Photo, error)
	// ListByOwner returns the owner's photos newest first.
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Photo, error)
	// ListMentioning returns every photo with a comment mentioning userID,
	// newest first, one entry per photo.
	ListMentioning(ctx context.Context, userID primitive.ObjectID) ([]models.Photo, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)

	// PushComment appends c to the photo's comments in one atomic update.
	PushComment(ctx context.Context, photoID primitive.ObjectID, c models.Comment) error
	// PullComment removes the comment only if authorID wrote it.
	PullComment(ctx context.Context, photoID, commentID, authorID primitive.ObjectID) error
	// PullCommentsByAuthor strips authorID's comments from every photo.
	PullCommentsByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error)
}

type FavoriteStore interface {
	Create(ctx context.Context, f *models.Favorite) error
	// Delete succeeds whether or not the pair existed.
	Delete(ctx context.Context, userID, photoID primitive.ObjectID) error
	// ListByUser returns the user's favorites newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error)
}
