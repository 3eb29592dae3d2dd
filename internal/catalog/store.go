package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// Resolved is the persisted resolver output of record: site -> category -> URL.
type Resolved = map[string]map[string]string

// DomainStore persists resolved domains between runs. Save is a full replace.
type DomainStore interface {
	Load(ctx context.Context) (Resolved, error)
	Save(ctx context.Context, resolved Resolved) error
}

// FileStore keeps resolved domains in a JSON document on disk.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load(_ context.Context) (Resolved, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Resolved{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	var resolved Resolved
	if err := json.Unmarshal(data, &resolved); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
	}
	return resolved, nil
}

func (s *FileStore) Save(_ context.Context, resolved Resolved) error {
	data, err := json.MarshalIndent(resolved, "", "    ")
	if err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.Path)
}

// RedisStore keeps the same JSON document under a single redis key, for
// deployments where the process has no durable disk.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(addr, password string, db int, key string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (Resolved, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return Resolved{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var resolved Resolved
	if err := json.Unmarshal([]byte(val), &resolved); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.key, err)
	}
	return resolved, nil
}

func (s *RedisStore) Save(ctx context.Context, resolved Resolved) error {
	data, err := json.Marshal(resolved)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Ping checks redis connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
