package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/domain"
	"github.com/spec-kit/staff-roster/internal/events"
	"github.com/spec-kit/staff-roster/internal/repository"
	"github.com/spec-kit/staff-roster/internal/sanitize"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

// StaffService serves the authoritative staff list.
type StaffService struct {
	staff      repository.StaffRepository
	sanitizer  *sanitize.Sanitizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// StaffDependencies encapsulates collaborators of the staff service.
type StaffDependencies struct {
	StaffRepo  repository.StaffRepository
	Sanitizer  *sanitize.Sanitizer
	Dispatcher events.Dispatcher
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies, logger *zap.Logger) *StaffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Sanitizer == nil {
		deps.Sanitizer = sanitize.New()
	}
	return &StaffService{
		staff:      deps.StaffRepo,
		sanitizer:  deps.Sanitizer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns the stored list in order.
func (s *StaffService) List(ctx context.Context) (domain.StaffList, error) {
	list, err := s.staff.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.sanitizer.List(list), nil
}

// Replace sanitizes raw (decoded JSON) and stores it as the whole list.
// raw must be a JSON array.
func (s *StaffService) Replace(ctx context.Context, raw any, remoteAddr string) (domain.StaffList, error) {
	if _, ok := raw.([]any); !ok {
		return nil, apperrors.NewValidationError("staff payload must be a JSON array", nil)
	}

	list := s.sanitizer.List(raw)
	if err := s.staff.ReplaceAll(ctx, list); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("staff list replaced", zap.Int("count", len(list)), zap.String("remote_addr", remoteAddr))

	if s.dispatcher != nil {
		payload := events.StaffReplacedPayload{Count: len(list), RemoteAddr: remoteAddr}
		if err := s.dispatcher.Publish(ctx, events.NewEvent(events.EventStaffReplaced, payload)); err != nil {
			s.logger.Warn("staff replaced listener failed", zap.Error(err))
		}
	}
	return list, nil
}
