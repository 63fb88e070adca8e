package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/redis/go-redis/v9"
)

// ErrSnapshotNotFound is returned when a session has no live snapshot, either
// because it never advanced a hole or because the snapshot expired.
var ErrSnapshotNotFound = errors.New("snapshot not found")

func snapshotKey(sessionID string) string {
	return "golf:" + sessionID + ":snapshot"
}

// SnapshotStore keeps the latest resumable snapshot per session in Redis.
type SnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnapshotStore(rdb *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SnapshotStore{rdb: rdb, ttl: ttl}
}

// Save overwrites the session's snapshot and refreshes its expiry.
func (s *SnapshotStore) Save(ctx context.Context, snap game.Snapshot) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	if snap.SessionID == "" {
		return errors.New("snapshot has no session id")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.rdb.SetEx(ctx, snapshotKey(snap.SessionID), data, s.ttl).Err()
}

func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (game.Snapshot, error) {
	if s == nil || s.rdb == nil {
		return game.Snapshot{}, ErrSnapshotNotFound
	}

	data, err := s.rdb.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return game.Snapshot{}, err
	}

	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", sessionID, err)
	}
	if len(snap.Levels) == 0 {
		return game.Snapshot{}, fmt.Errorf("snapshot %s has no levels", sessionID)
	}
	return snap, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, snapshotKey(sessionID)).Err()
}
