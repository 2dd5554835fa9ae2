package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"photoshare/models"
)

const (
	keyPrefix     = "photoshare:session:"
	userKeyPrefix = "photoshare:user_sessions:"
)

// touchScript updates last_seen only on a live key so an expired session is
// never resurrected without a TTL.
var touchScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	redis.call("HSET", KEYS[1], "last_seen", ARGV[1])
	return 1
end
return 0
`)

// RedisStore keeps each session in a hash whose key expires with the session.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ Store = (*RedisStore)(nil)

func sessionKey(id string) string {
	return keyPrefix + id
}

// userKey holds the ids of a user's sessions. Members may outlive their
// session keys; DestroyUser deletes whatever is left.
func userKey(userID string) string {
	return userKeyPrefix + userID
}

func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	key := sessionKey(sess.ID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", sess.UserID,
			"created_at", strconv.FormatInt(sess.CreatedAt.UnixNano(), 10),
			"expires_at", strconv.FormatInt(sess.ExpiresAt.UnixNano(), 10),
			"last_seen", strconv.FormatInt(sess.LastSeen.UnixNano(), 10),
		)
		pipe.ExpireAt(ctx, key, sess.ExpiresAt)
		pipe.SAdd(ctx, userKey(sess.UserID), sess.ID)
		pipe.ExpireAt(ctx, userKey(sess.UserID), sess.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	sess := &models.Session{ID: id, UserID: fields["user_id"]}
	sess.CreatedAt = parseUnixNano(fields["created_at"])
	sess.ExpiresAt = parseUnixNano(fields["expires_at"])
	sess.LastSeen = parseUnixNano(fields["last_seen"])

	if sess.UserID == "" || sess.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore) Touch(ctx context.Context, id string, at time.Time) error {
	n, err := touchScript.Run(ctx, s.client, []string{sessionKey(id)}, strconv.FormatInt(at.UnixNano(), 10)).Int()
	if err != nil {
		return fmt.Errorf("redis_session_touch_failed: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis_session_destroy_failed: %w", err)
	}
	return nil
}

func (s *RedisStore) DestroyUser(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("redis_session_list_user_failed: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey(userID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis_session_destroy_user_failed: %w", err)
	}
	return nil
}

func parseUnixNano(v string) time.Time {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// NewRedisClient parses url and verifies connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return client, nil
}
