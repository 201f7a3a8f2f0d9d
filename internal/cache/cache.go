// Package cache holds the last known-good staff list on the local machine.
//
// The cache is the offline fallback for the sync store. It never hands out
// unsanitized data: lists are sanitized before they are written and again
// when they are read back, and unreadable slots degrade to an empty list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/domain"
	"github.com/spec-kit/staff-roster/internal/persistence"
	"github.com/spec-kit/staff-roster/internal/sanitize"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

// Slot keys owned by the cache.
const (
	StaffKey    = "staff"
	CachedAtKey = "staff_cached_at"
)

// SchemaVersion is the version of the persisted staff envelope.
const SchemaVersion = 1

type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Staff         json.RawMessage `json:"staff"`
}

// Cache reads and writes the staff list slots.
type Cache struct {
	slots     persistence.Slots
	sanitizer *sanitize.Sanitizer
	now       func() time.Time
	logger    *zap.Logger
}

// New builds a Cache over slots. A nil sanitizer or logger gets a default.
func New(slots persistence.Slots, sanitizer *sanitize.Sanitizer, logger *zap.Logger) *Cache {
	if sanitizer == nil {
		sanitizer = sanitize.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{slots: slots, sanitizer: sanitizer, now: time.Now, logger: logger}
}

// Read returns the cached list, or an empty list when nothing usable is stored.
func (c *Cache) Read(ctx context.Context) domain.StaffList {
	list, err := c.read(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrCorruptData) {
			c.logger.Warn("discarding unreadable staff cache", zap.Error(err))
		} else if !errors.Is(err, persistence.ErrSlotNotFound) {
			c.logger.Warn("staff cache read failed", zap.Error(err))
		}
		return domain.StaffList{}
	}
	return list
}

func (c *Cache) read(ctx context.Context) (domain.StaffList, error) {
	payload, err := c.slots.Get(ctx, StaffKey)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, apperrors.NewCorruptData(StaffKey, err)
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, apperrors.NewCorruptData(StaffKey, errors.New("unsupported schema version"))
	}
	return c.sanitizer.JSON(env.Staff), nil
}

// Write sanitizes list and replaces the cached copy, then stamps the
// cached-at slot. It returns the list as stored.
func (c *Cache) Write(ctx context.Context, list domain.StaffList) (domain.StaffList, error) {
	clean := c.sanitizer.List(list)

	staff, err := json.Marshal(clean)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(envelope{SchemaVersion: SchemaVersion, Staff: staff})
	if err != nil {
		return nil, err
	}
	if err := c.slots.Put(ctx, StaffKey, payload); err != nil {
		return nil, err
	}

	// the list is stored; a missing timestamp only affects diagnostics
	stamp, _ := json.Marshal(c.now().UTC().Format(domain.TimestampLayout))
	if err := c.slots.Put(ctx, CachedAtKey, stamp); err != nil {
		c.logger.Warn("stamping staff cache time failed", zap.Error(err))
	}

	c.logger.Debug("staff cache written", zap.Int("count", len(clean)))
	return clean, nil
}

// Clear removes the list and its timestamp.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.slots.Delete(ctx, StaffKey); err != nil {
		return err
	}
	return c.slots.Delete(ctx, CachedAtKey)
}

// CachedAt reports when the list was last written. It is informational only.
func (c *Cache) CachedAt(ctx context.Context) (time.Time, bool) {
	payload, err := c.slots.Get(ctx, CachedAtKey)
	if err != nil {
		return time.Time{}, false
	}
	var raw string
	if err := json.Unmarshal(payload, &raw); err != nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(domain.TimestampLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Entry returns the cached list together with its timestamp.
func (c *Cache) Entry(ctx context.Context) domain.CacheEntry {
	at, _ := c.CachedAt(ctx)
	return domain.CacheEntry{List: c.Read(ctx), CachedAt: at}
}
