// Package session holds login sessions outside the request handlers.
//
// A Store is the authority on whether a session is alive; the Manager hands
// clients a signed token that only names a session, so destroying the stored
// session revokes the token immediately.
package session

import (
	"context"
	"errors"
	"time"

	"photoshare/models"
)

var ErrNotFound = errors.New("session: not found")

type Store interface {
	Create(ctx context.Context, s *models.Session) error
	// Get returns ErrNotFound for missing or expired sessions.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Touch records activity. It never extends ExpiresAt.
	Touch(ctx context.Context, id string, at time.Time) error
	Destroy(ctx context.Context, id string) error
	// DestroyUser removes every session belonging to userID.
	DestroyUser(ctx context.Context, userID string) error
}
