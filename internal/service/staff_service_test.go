package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/domain"
	"github.com/spec-kit/staff-roster/internal/events"
	"github.com/spec-kit/staff-roster/internal/repository"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

type failingRepo struct{ err error }

func (f failingRepo) List(context.Context) (domain.StaffList, error)     { return nil, f.err }
func (f failingRepo) ReplaceAll(context.Context, domain.StaffList) error { return f.err }

func TestReplaceSanitizesAndPublishes(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var got []events.StaffReplacedPayload
	dispatcher.Subscribe(events.EventStaffReplaced, func(_ context.Context, e events.Event) error {
		got = append(got, e.Payload.(events.StaffReplacedPayload))
		return nil
	})

	repo := repository.NewMemoryStaffRepository()
	svc := NewStaffService(StaffDependencies{StaffRepo: repo, Dispatcher: dispatcher}, zap.NewNop())

	raw := []any{
		map[string]any{"id": "a", "nickname": "  Ann  ", "avatarUrl": "javascript:alert(1)"},
		"not an object",
	}
	list, err := svc.Replace(context.Background(), raw, "10.0.0.1")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(list) != 2 || list[0].Nickname != "Ann" || list[0].AvatarURL != "" || list[1].Order != 1 {
		t.Fatalf("unexpected sanitized list %+v", list)
	}

	stored, err := svc.List(context.Background())
	if err != nil || len(stored) != 2 || stored[0].ID != "a" {
		t.Fatalf("unexpected stored list %+v (%v)", stored, err)
	}

	if len(got) != 1 || got[0].Count != 2 || got[0].RemoteAddr != "10.0.0.1" {
		t.Fatalf("expected one staff_replaced event, got %+v", got)
	}
}

func TestReplaceRejectsNonArray(t *testing.T) {
	svc := NewStaffService(StaffDependencies{StaffRepo: repository.NewMemoryStaffRepository()}, nil)

	for _, raw := range []any{map[string]any{"staff": []any{}}, "x", nil} {
		if _, err := svc.Replace(context.Background(), raw, ""); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("expected validation error for %v, got %v", raw, err)
		}
	}
}

func TestRepositoryErrorsAreInternal(t *testing.T) {
	svc := NewStaffService(StaffDependencies{StaffRepo: failingRepo{err: errors.New("db down")}}, nil)

	_, err := svc.List(context.Background())
	if de := apperrors.ToDomainError(err); de.Code != apperrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	_, err = svc.Replace(context.Background(), []any{}, "")
	if de := apperrors.ToDomainError(err); de.Code != apperrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}
