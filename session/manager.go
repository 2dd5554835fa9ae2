package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"photoshare/logger"
	"photoshare/models"
)

var ErrInvalidToken = errors.New("session: invalid token")

// Claims name the session; they carry no authority on their own.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a session for userID and returns its signed token. The
// session lifetime is fixed here and never renewed.
func (m *Manager) Issue(ctx context.Context, userID string) (string, *models.Session, error) {
	now := m.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		LastSeen:  now,
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		_ = m.store.Destroy(ctx, sess.ID)
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return token, sess, nil
}

// Authenticate resolves a token to its live session. Any failure to do so is
// ErrInvalidToken unless the store itself is unreachable.
func (m *Manager) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	sess, err := m.store.Get(ctx, claims.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.UserID || sess.Expired(m.now()) {
		return nil, ErrInvalidToken
	}

	if err := m.store.Touch(ctx, sess.ID, m.now()); err != nil && !errors.Is(err, ErrNotFound) {
		logger.Log.Warn("Failed to touch session", zap.String("session_id", sess.ID), zap.Error(err))
	}
	return sess, nil
}

// Revoke destroys the session; the token naming it stops working at once.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	return m.store.Destroy(ctx, sessionID)
}

// RevokeUser destroys every session of userID, on every device.
func (m *Manager) RevokeUser(ctx context.Context, userID string) error {
	return m.store.DestroyUser(ctx, userID)
}
