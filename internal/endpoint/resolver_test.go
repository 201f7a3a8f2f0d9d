package endpoint

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/persistence"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

func openSlots(t *testing.T) *persistence.Bolt {
	t.Helper()

	slots, err := persistence.OpenBolt(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open slots: %v", err)
	}
	t.Cleanup(func() { _ = slots.Close() })
	return slots
}

func detected(v bool) HostDetector {
	return func() bool { return v }
}

func TestResolvePrecedence(t *testing.T) {
	const (
		forced   = "https://embedded.test/api/staff"
		override = "https://override.test/staff"
		def      = "https://default.test/staff"
	)

	tests := []struct {
		name     string
		cfg      Config
		override string
		want     string
	}{
		{name: "nothing configured", want: ""},
		{name: "default only", cfg: Config{Default: def}, want: def},
		{name: "override beats default", cfg: Config{Default: def}, override: override, want: override},
		{
			name:     "forced beats override when host detected",
			cfg:      Config{Default: def, Forced: forced, EmbeddedHost: detected(true)},
			override: override,
			want:     forced,
		},
		{
			name:     "forced ignored outside embedded host",
			cfg:      Config{Default: def, Forced: forced, EmbeddedHost: detected(false)},
			override: override,
			want:     override,
		},
		{name: "invalid default ignored", cfg: Config{Default: "ftp://default.test"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(openSlots(t), tt.cfg, nil)
			ctx := context.Background()
			if tt.override != "" {
				if err := r.SetOverride(ctx, tt.override); err != nil {
					t.Fatalf("set override: %v", err)
				}
			}
			if got := r.Resolve(ctx); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSetOverrideRejectsInvalidURL(t *testing.T) {
	r := NewResolver(openSlots(t), Config{Default: "https://default.test"}, nil)
	ctx := context.Background()

	for _, bad := range []string{"not a url", "ftp://x.test", "/relative", "https://"} {
		err := r.SetOverride(ctx, bad)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", bad, err)
		}
	}
	if got := r.Resolve(ctx); got != "https://default.test" {
		t.Fatalf("rejected override must not be stored, resolved %q", got)
	}
}

func TestSetOverrideEmptyClears(t *testing.T) {
	r := NewResolver(openSlots(t), Config{Default: "https://default.test"}, nil)
	ctx := context.Background()

	if err := r.SetOverride(ctx, "https://override.test"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := r.SetOverride(ctx, "   "); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := r.Resolve(ctx); got != "https://default.test" {
		t.Fatalf("expected default after clearing, got %q", got)
	}
}

func TestOverridePersists(t *testing.T) {
	slots := openSlots(t)
	ctx := context.Background()

	if err := NewResolver(slots, Config{}, nil).SetOverride(ctx, "http://lan.test:8080/staff"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := NewResolver(slots, Config{}, nil).Resolve(ctx); got != "http://lan.test:8080/staff" {
		t.Fatalf("expected stored override, got %q", got)
	}
}

func TestCorruptOverrideIgnored(t *testing.T) {
	slots := openSlots(t)
	ctx := context.Background()
	if err := slots.Put(ctx, OverrideKey, []byte(`{broken`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := NewResolver(slots, Config{Default: "https://default.test"}, nil)
	if got := r.Resolve(ctx); got != "https://default.test" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestEnvDetector(t *testing.T) {
	t.Setenv("STAFF_TEST_EMBEDDED", "1")
	if !EnvDetector("STAFF_TEST_EMBEDDED")() {
		t.Fatalf("expected detection when variable is set")
	}
	if EnvDetector("")() {
		t.Fatalf("empty name must never detect")
	}
	t.Setenv("STAFF_TEST_EMBEDDED", "")
	if EnvDetector("STAFF_TEST_EMBEDDED")() {
		t.Fatalf("expected no detection when variable is empty")
	}
}
