// Package syncstore reconciles the remote staff endpoint with the local cache.
//
// The store holds no list between calls. Callers load a list, mutate their
// own copy (add, edit, delete, reorder) and hand the whole list back to Save.
//
//	store := syncstore.New(deps, logger)
//	list := store.Load(ctx, true)
//	list = roster.Move(list, id, -1)
//	err := store.Save(ctx, list, pin, true)
package syncstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/domain"
	"github.com/spec-kit/staff-roster/internal/events"
	"github.com/spec-kit/staff-roster/internal/observability"
	"github.com/spec-kit/staff-roster/internal/sanitize"
)

// LocalCache is the durable local copy of the list.
type LocalCache interface {
	Read(ctx context.Context) domain.StaffList
	Write(ctx context.Context, list domain.StaffList) (domain.StaffList, error)
	Clear(ctx context.Context) error
	CachedAt(ctx context.Context) (time.Time, bool)
}

// RemoteStore is the authoritative copy behind an endpoint URL.
type RemoteStore interface {
	Load(ctx context.Context, endpoint string) (domain.StaffList, error)
	Save(ctx context.Context, endpoint string, list domain.StaffList, credential string) error
}

// EndpointResolver picks the active endpoint and manages the override.
type EndpointResolver interface {
	Resolve(ctx context.Context) string
	SetOverride(ctx context.Context, url string) error
	ClearOverride(ctx context.Context) error
}

// Dependencies bundles the collaborators of a Store.
type Dependencies struct {
	Cache      LocalCache
	Remote     RemoteStore
	Resolver   EndpointResolver
	Sanitizer  *sanitize.Sanitizer
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// Store implements remote-preferred load and remote-then-local save.
type Store struct {
	cache      LocalCache
	remote     RemoteStore
	resolver   EndpointResolver
	sanitizer  *sanitize.Sanitizer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// Report describes the outcome of a save.
type Report struct {
	Staff domain.StaffList
	State events.SyncState
}

// New builds a Store. Missing sanitizer, dispatcher and logger get defaults.
func New(deps Dependencies, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Sanitizer == nil {
		deps.Sanitizer = sanitize.New()
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewInMemoryDispatcher()
	}
	return &Store{
		cache:      deps.Cache,
		remote:     deps.Remote,
		resolver:   deps.Resolver,
		sanitizer:  deps.Sanitizer,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Load returns the staff list. With preferRemote and an active endpoint it
// tries the remote first and caches the result; any remote failure falls
// back to the cache without touching it. Load never fails.
func (s *Store) Load(ctx context.Context, preferRemote bool) domain.StaffList {
	if !preferRemote {
		return s.cache.Read(ctx)
	}
	endpoint := s.ResolveEndpoint(ctx)
	if endpoint == "" {
		return s.cache.Read(ctx)
	}

	list, err := s.remote.Load(ctx, endpoint)
	if err != nil {
		s.metrics.RecordSync("load", "fallback")
		s.logger.Warn("remote load failed; serving cached staff",
			zap.String("endpoint", endpoint), zap.Error(err))
		return s.cache.Read(ctx)
	}
	s.metrics.RecordSync("load", "remote")

	stored, err := s.cache.Write(ctx, list)
	if err != nil {
		s.logger.Warn("caching remote staff failed", zap.Error(err))
		return s.sanitizer.List(list)
	}
	return stored
}

// Save sanitizes list and persists it. With preferRemote and an active
// endpoint the remote is written first; the local cache is written whatever
// the remote outcome, and a remote failure is returned only after that.
func (s *Store) Save(ctx context.Context, list domain.StaffList, credential string, preferRemote bool) error {
	_, err := s.SaveReport(ctx, list, credential, preferRemote)
	return err
}

// SaveReport is Save with the stored list and where it ended up.
func (s *Store) SaveReport(ctx context.Context, list domain.StaffList, credential string, preferRemote bool) (Report, error) {
	clean := s.sanitizer.List(list)
	state := events.SyncStateLocal

	var remoteErr error
	if preferRemote {
		if endpoint := s.ResolveEndpoint(ctx); endpoint != "" {
			remoteErr = s.remote.Save(ctx, endpoint, clean, credential)
			if remoteErr != nil {
				s.metrics.RecordSync("save", "remote_failed")
				s.logger.Warn("remote save failed; keeping local copy",
					zap.String("endpoint", endpoint), zap.Error(remoteErr))
			} else {
				s.metrics.RecordSync("save", "remote")
				state = events.SyncStateSynced
			}
		}
	}

	stored, err := s.cache.Write(ctx, clean)
	if err != nil {
		s.metrics.RecordSync("save", "local_failed")
		return Report{State: state}, errors.Join(fmt.Errorf("write local cache: %w", err), remoteErr)
	}
	s.metrics.RecordSync("save", "local")

	report := Report{Staff: stored, State: state}
	s.notify(ctx, report)
	return report, remoteErr
}

// Subscribe registers fn to run after every save (and reset) with the
// resulting list.
func (s *Store) Subscribe(fn func(context.Context, events.StaffChangedPayload)) {
	s.dispatcher.Subscribe(events.EventStaffChanged, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.StaffChangedPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", event.Payload)
		}
		fn(ctx, payload)
		return nil
	})
}

// ResolveEndpoint returns the active endpoint, or "" in local-only mode.
func (s *Store) ResolveEndpoint(ctx context.Context) string {
	if s.resolver == nil || s.remote == nil {
		return ""
	}
	return s.resolver.Resolve(ctx)
}

// SetOverride stores a user endpoint override; "" clears it.
func (s *Store) SetOverride(ctx context.Context, url string) error {
	if s.resolver == nil {
		return errors.New("endpoint resolution is not configured")
	}
	return s.resolver.SetOverride(ctx, url)
}

// CachedAt reports when the local list was last written.
func (s *Store) CachedAt(ctx context.Context) (time.Time, bool) {
	return s.cache.CachedAt(ctx)
}

// Reset clears the cached list, its timestamp and the endpoint override.
func (s *Store) Reset(ctx context.Context) error {
	var errs []error
	if err := s.cache.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear cache: %w", err))
	}
	if s.resolver != nil {
		if err := s.resolver.ClearOverride(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear endpoint override: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.Info("local staff data reset")
	s.notify(ctx, Report{Staff: domain.StaffList{}, State: events.SyncStateLocal})
	return nil
}

func (s *Store) notify(ctx context.Context, report Report) {
	payload := events.StaffChangedPayload{Staff: report.Staff.Clone(), State: report.State}
	if err := s.dispatcher.Publish(ctx, events.NewEvent(events.EventStaffChanged, payload)); err != nil {
		s.logger.Warn("staff changed listener failed", zap.Error(err))
	}
}
