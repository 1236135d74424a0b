package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"smartsched/models"
)

const sessionPrefix = "sched:sess:"

// SessionStore persists dialogue sessions between turns.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.DialogueSession, error)
	Set(ctx context.Context, sess *models.DialogueSession) error
	Delete(ctx context.Context, id string) error
	ActiveIDs(ctx context.Context) ([]string, error)
}

// RedisSessionStore keeps each session as a JSON blob under a TTL, so
// abandoned conversations age out without bookkeeping.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.DialogueSession, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Result()
	if err == redis.Nil {
		return nil, &SessionNotFoundError{SessionID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess models.DialogueSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, sess *models.DialogueSession) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, sessionPrefix+sess.ID, b, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionPrefix+id).Err()
}

// ActiveIDs scans the session keyspace; used by the inactivity sweeper.
func (s *RedisSessionStore) ActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, sessionPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(sessionPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return ids, nil
}

// MemorySessionStore is an in-process store for tests.
type MemorySessionStore struct {
	sessions map[string]*models.DialogueSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*models.DialogueSession)}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*models.DialogueSession, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, &SessionNotFoundError{SessionID: id}
	}
	clone := *sess
	return &clone, nil
}

func (s *MemorySessionStore) Set(_ context.Context, sess *models.DialogueSession) error {
	clone := *sess
	s.sessions[sess.ID] = &clone
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *MemorySessionStore) ActiveIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}
