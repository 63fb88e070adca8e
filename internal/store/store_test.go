package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/playmatatu/gravityputt/internal/game"
)

func TestSnapshotKey(t *testing.T) {
	if got := snapshotKey("abc"); got != "golf:abc:snapshot" {
		t.Errorf("Unexpected key %q", got)
	}
}

func TestSnapshotStoreWithoutRedis(t *testing.T) {
	s := NewSnapshotStore(nil, 0)
	ctx := context.Background()

	if s.ttl != 24*time.Hour {
		t.Errorf("Expected default TTL of 24h, got %s", s.ttl)
	}
	if err := s.Save(ctx, game.Snapshot{SessionID: "a"}); err != nil {
		t.Errorf("Save without redis should be a no-op, got %v", err)
	}
	if _, err := s.Load(ctx, "a"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete without redis should be a no-op, got %v", err)
	}
}

func TestIdleSetWithoutRedis(t *testing.T) {
	s := NewIdleSet(nil)
	ctx := context.Background()
	if err := s.Touch(ctx, "a", time.Now()); err != nil {
		t.Errorf("Touch: %v", err)
	}
	due, err := s.Due(ctx, time.Now())
	if err != nil || len(due) != 0 {
		t.Errorf("Due = %v, %v", due, err)
	}
	if ok, _ := s.Claim(ctx, "a"); ok {
		t.Error("Claim without redis must never succeed")
	}
}

func TestRecordStoreWithoutDatabase(t *testing.T) {
	s := NewRecordStore(nil)
	ctx := context.Background()

	if err := s.CreateSession(ctx, "a", 7); err != nil {
		t.Errorf("CreateSession: %v", err)
	}
	if err := s.RecordHole(ctx, "a", game.HoleResult{Hole: 1, Strokes: 2}); err != nil {
		t.Errorf("RecordHole: %v", err)
	}
	if _, err := s.GetSession(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	entries, err := s.Leaderboard(ctx, 1, 10)
	if err != nil || entries == nil || len(entries) != 0 {
		t.Errorf("Leaderboard should be an empty list, got %v, %v", entries, err)
	}
}

func TestLeaderboardLimit(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 20},
		{-5, 20},
		{1, 1},
		{50, 50},
		{100, 100},
		{101, 100},
		{5000, 100},
	}
	for _, c := range cases {
		if got := leaderboardLimit(c.in); got != c.want {
			t.Errorf("leaderboardLimit(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestEventRoundTrip(t *testing.T) {
	stats := game.GameStats{HoleNumber: 3, TotalStrokes: 5}
	ev := Event{Type: EventHoleCompleted, SessionID: "s1", Hole: 2, Strokes: 3, Stats: &stats}

	if n, err := NewEventBus(nil).Publish(context.Background(), ev); n != 0 || err != nil {
		t.Errorf("Publish without redis = %d, %v", n, err)
	}

	payload := `{"type":"session_halted","session_id":"s1","reason":"level generation failed","at":"2024-01-01T00:00:00Z"}`
	got, err := DecodeEvent(payload)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got.Type != EventSessionHalted || got.SessionID != "s1" || !strings.Contains(got.Reason, "generation") {
		t.Errorf("Decoded %+v", got)
	}
	if _, err := DecodeEvent("{"); err == nil {
		t.Error("Expected an error for a truncated payload")
	}
}
