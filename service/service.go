// Package service implements the photo-sharing operations on top of the
// stores: accounts and sessions, photos, the comment/mention engine and
// favorites. Every exported method returns *apperr.AppError for failures a
// client can act on.
package service

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"photoshare/apperr"
	"photoshare/filestore"
	"photoshare/session"
	"photoshare/store"
)

// Actor is the identity an authenticated request acts as.
type Actor struct {
	UserID    primitive.ObjectID
	SessionID string
}

type Deps struct {
	Users     store.UserStore
	Photos    store.PhotoStore
	Favorites store.FavoriteStore
	Files     filestore.Storage
	Sessions  *session.Manager
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Now defaults to time.Now.
	Now func() time.Time
}

type Services struct {
	Accounts  *Accounts
	Photos    *Photos
	Comments  *Comments
	Favorites *Favorites
}

func New(d Deps) *Services {
	if d.BcryptCost == 0 {
		d.BcryptCost = bcrypt.DefaultCost
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	deps := &d
	return &Services{
		Accounts:  &Accounts{deps: deps},
		Photos:    &Photos{deps: deps},
		Comments:  &Comments{deps: deps},
		Favorites: &Favorites{deps: deps},
	}
}

// parseID turns a client-supplied hex id into an ObjectID.
func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidInput("Invalid " + what + " ID")
	}
	return id, nil
}

// storeErr maps store sentinels at the service boundary.
func storeErr(err error, resource string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(resource)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict(resource + " already exists")
	default:
		return apperr.Internal(err)
	}
}
