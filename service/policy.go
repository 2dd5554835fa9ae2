package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"photoshare/apperr"
	"photoshare/models"
	"photoshare/store"
)

// The ownership rules live here and nowhere else. Each check first requires a
// session, so a missing identity is always Unauthorized, never Forbidden.

func requireSession(actor Actor) error {
	if actor.UserID.IsZero() {
		return apperr.Unauthorized("User not logged in")
	}
	return nil
}

// requireLiveUser is requireSession for operations that create content: a
// session that outlived its account must not add anything owned by it.
func requireLiveUser(ctx context.Context, deps *Deps, actor Actor) (*models.User, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	u, err := deps.Users.FindByID(ctx, actor.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("User no longer exists")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func canDeletePhoto(actor Actor, p *models.Photo) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	if p.UserID != actor.UserID {
		return apperr.Forbidden("Only the owner can delete this photo")
	}
	return nil
}

// canDeleteComment checks authorship; owning the photo grants nothing.
func canDeleteComment(actor Actor, c *models.Comment) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	if c.UserID != actor.UserID {
		return apperr.Forbidden("Only the author can delete this comment")
	}
	return nil
}

func canDeleteAccount(actor Actor, target primitive.ObjectID) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	if target != actor.UserID {
		return apperr.Forbidden("You can only delete your own account")
	}
	return nil
}

func canDeleteAllPhotos(actor Actor, owner primitive.ObjectID) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	if owner != actor.UserID {
		return apperr.Forbidden("You can only delete your own photos")
	}
	return nil
}
