// Package endpoint decides which remote staff endpoint, if any, is active.
package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/persistence"
	"github.com/spec-kit/staff-roster/internal/sanitize"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

// OverrideKey is the slot holding the user's endpoint override.
const OverrideKey = "endpoint_override"

// HostDetector reports whether the process runs inside a recognized
// embedded host that pins the endpoint.
type HostDetector func() bool

// EnvDetector detects an embedded host by the presence of an environment
// variable. An empty name never detects.
func EnvDetector(name string) HostDetector {
	return func() bool {
		if name == "" {
			return false
		}
		return strings.TrimSpace(os.Getenv(name)) != ""
	}
}

// Config is the static part of endpoint resolution.
type Config struct {
	// Default is the endpoint published in site configuration.
	Default string
	// Forced replaces everything else when EmbeddedHost detects its host.
	Forced       string
	EmbeddedHost HostDetector
}

// Resolver applies the fixed precedence: forced host path, stored
// override, published default, none.
type Resolver struct {
	slots  persistence.Slots
	cfg    Config
	logger *zap.Logger
}

// NewResolver builds a Resolver storing overrides in slots.
func NewResolver(slots persistence.Slots, cfg Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{slots: slots, cfg: cfg, logger: logger}
}

// Resolve returns the active endpoint, or "" for local-only mode.
func (r *Resolver) Resolve(ctx context.Context) string {
	if r.cfg.EmbeddedHost != nil && r.cfg.EmbeddedHost() {
		if forced := strings.TrimSpace(r.cfg.Forced); sanitize.IsHTTPURL(forced) {
			return forced
		}
	}
	if override := r.Override(ctx); override != "" {
		return override
	}
	if def := strings.TrimSpace(r.cfg.Default); def != "" {
		if sanitize.IsHTTPURL(def) {
			return def
		}
		r.logger.Warn("ignoring invalid default staff endpoint", zap.String("endpoint", def))
	}
	return ""
}

// Override returns the stored override, or "" when none is usable.
func (r *Resolver) Override(ctx context.Context) string {
	payload, err := r.slots.Get(ctx, OverrideKey)
	if err != nil {
		if !errors.Is(err, persistence.ErrSlotNotFound) {
			r.logger.Warn("endpoint override read failed", zap.Error(err))
		}
		return ""
	}
	var stored string
	if err := json.Unmarshal(payload, &stored); err != nil || !sanitize.IsHTTPURL(stored) {
		r.logger.Warn("discarding unreadable endpoint override",
			zap.Error(apperrors.NewCorruptData(OverrideKey, err)))
		return ""
	}
	return stored
}

// SetOverride stores url for future resolutions. An empty url clears the
// override; anything else must be an http or https URL.
func (r *Resolver) SetOverride(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return r.ClearOverride(ctx)
	}
	if !sanitize.IsHTTPURL(url) {
		return apperrors.NewValidationError("endpoint override must be an http or https URL",
			map[string]any{"url": url})
	}

	payload, err := json.Marshal(url)
	if err != nil {
		return err
	}
	if err := r.slots.Put(ctx, OverrideKey, payload); err != nil {
		return err
	}
	r.logger.Info("endpoint override set", zap.String("endpoint", url))
	return nil
}

// ClearOverride removes the stored override.
func (r *Resolver) ClearOverride(ctx context.Context) error {
	return r.slots.Delete(ctx, OverrideKey)
}
