package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/domain"
	"github.com/spec-kit/staff-roster/internal/persistence"
)

func setupCache(t *testing.T) (*Cache, *persistence.Bolt) {
	t.Helper()

	slots, err := persistence.OpenBolt(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open slots: %v", err)
	}
	t.Cleanup(func() { _ = slots.Close() })

	return New(slots, nil, zap.NewNop()), slots
}

func TestReadEmptyCache(t *testing.T) {
	c, _ := setupCache(t)

	list := c.Read(context.Background())
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
	if _, ok := c.CachedAt(context.Background()); ok {
		t.Fatalf("expected no cached-at on empty cache")
	}
}

func TestWriteSanitizesAndStamps(t *testing.T) {
	c, _ := setupCache(t)
	stamp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return stamp }
	ctx := context.Background()

	dirty := domain.StaffList{
		{ID: "a", Nickname: "  Ann ", AvatarURL: "ftp://bad", Order: 9},
		{ID: "b", Nickname: "Bo", Order: 9},
	}
	stored, err := c.Write(ctx, dirty)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if stored[0].Nickname != "Ann" || stored[0].AvatarURL != "" || stored[1].Order != 1 {
		t.Fatalf("expected sanitized list, got %+v", stored)
	}

	got := c.Read(ctx)
	if len(got) != 2 || got[0] != stored[0] || got[1] != stored[1] {
		t.Fatalf("expected read to match stored list, got %+v", got)
	}

	at, ok := c.CachedAt(ctx)
	if !ok || !at.Equal(stamp) {
		t.Fatalf("expected cached-at %v, got %v (ok=%v)", stamp, at, ok)
	}
	if dirty[0].Nickname != "  Ann " {
		t.Fatalf("write must not mutate the caller's list")
	}
}

func TestReadCorruptData(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `{{{`},
		{name: "wrong schema version", payload: `{"schemaVersion":2,"staff":[{"id":"a"}]}`},
		{name: "bare array", payload: `[{"id":"a"}]`},
		{name: "staff not a list", payload: `{"schemaVersion":1,"staff":{"id":"a"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, slots := setupCache(t)
			ctx := context.Background()
			if err := slots.Put(ctx, StaffKey, []byte(tt.payload)); err != nil {
				t.Fatalf("seed: %v", err)
			}
			if got := c.Read(ctx); len(got) != 0 {
				t.Fatalf("expected empty list, got %+v", got)
			}
		})
	}
}

func TestReadResanitizesStoredData(t *testing.T) {
	c, slots := setupCache(t)
	ctx := context.Background()

	payload := `{"schemaVersion":1,"staff":[{"id":"a","name":"Legacy","avatarUrl":"javascript:x","order":5}]}`
	if err := slots.Put(ctx, StaffKey, []byte(payload)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got := c.Read(ctx)
	if len(got) != 1 || got[0].Nickname != "Legacy" || got[0].AvatarURL != "" || got[0].Order != 0 {
		t.Fatalf("expected sanitized record, got %+v", got)
	}
}

func TestClear(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	if _, err := c.Write(ctx, domain.StaffList{{ID: "a"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := c.Read(ctx); len(got) != 0 {
		t.Fatalf("expected empty after clear, got %+v", got)
	}
	if _, ok := c.CachedAt(ctx); ok {
		t.Fatalf("expected cached-at removed")
	}
}

type failingSlots struct{}

func (failingSlots) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingSlots) Put(context.Context, string, []byte) error   { return errors.New("disk gone") }
func (failingSlots) Delete(context.Context, string) error        { return errors.New("disk gone") }

func TestReadDegradesOnStorageFailure(t *testing.T) {
	c := New(failingSlots{}, nil, nil)

	if got := c.Read(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
	if _, err := c.Write(context.Background(), domain.StaffList{{ID: "a"}}); err == nil {
		t.Fatalf("expected write error to surface")
	}
}

// stampFailingSlots stores everything except the cached-at timestamp.
type stampFailingSlots struct {
	persistence.Slots
}

func (s stampFailingSlots) Put(ctx context.Context, key string, value []byte) error {
	if key == CachedAtKey {
		return errors.New("disk full")
	}
	return s.Slots.Put(ctx, key, value)
}

func TestWriteSucceedsWhenStampFails(t *testing.T) {
	_, slots := setupCache(t)
	c := New(stampFailingSlots{Slots: slots}, nil, zap.NewNop())
	ctx := context.Background()

	stored, err := c.Write(ctx, domain.StaffList{{ID: "a"}})
	if err != nil {
		t.Fatalf("expected write to succeed without a timestamp, got %v", err)
	}
	if len(stored) != 1 || stored[0].ID != "a" {
		t.Fatalf("unexpected stored list %+v", stored)
	}
	if got := c.Read(ctx); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected list persisted, got %+v", got)
	}
	if _, ok := c.CachedAt(ctx); ok {
		t.Fatalf("expected no cached-at after a failed stamp")
	}
}
