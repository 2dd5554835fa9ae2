package store

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// wrapErr maps driver errors onto the package sentinels.
func wrapErr(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", action, err)
}
