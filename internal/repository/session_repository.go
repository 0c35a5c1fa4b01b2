package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"buzztub/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository keeps live sessions in Redis. Each user also has a set of
// their session ids so every session of a user can be revoked at once.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(id string) string {
	return "session:" + id
}

func userSessionsKey(username string) string {
	return "user_sessions:" + username
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
		pipe.SAdd(ctx, userSessionsKey(session.Username), session.ID)
		pipe.Expire(ctx, userSessionsKey(session.Username), ttl)
		return nil
	})
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	// A record with an unknown role cannot be gated; treat it as gone.
	if !session.Role.Valid() {
		return models.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Delete is idempotent: deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, session models.Session) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(session.ID))
		pipe.SRem(ctx, userSessionsKey(session.Username), session.ID)
		return nil
	})
	return err
}

// DeleteByUser revokes every session of the user and returns how many were
// removed.
func (r *SessionRepository) DeleteByUser(ctx context.Context, username string) (int, error) {
	ids, err := r.client.SMembers(ctx, userSessionsKey(username)).Result()
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(username))

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(ids), nil
}
