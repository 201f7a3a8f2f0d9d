package syncstore

import (
	"errors"

	"github.com/spec-kit/staff-roster/internal/events"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

// Status is the user-facing outcome of a save.
type Status string

const (
	StatusSynced    Status = "synced"
	StatusLocalOnly Status = "saved locally only"
	StatusRejected  Status = "rejected: bad credential"
	StatusFailed    Status = "not saved"
)

// StatusOf maps a SaveReport result to the message shown to the user.
func StatusOf(report Report, err error) Status {
	switch {
	case err == nil && report.State == events.SyncStateSynced:
		return StatusSynced
	case err == nil:
		return StatusLocalOnly
	case report.Staff == nil:
		// the local write itself failed
		return StatusFailed
	case errors.Is(err, apperrors.ErrUnauthorized):
		return StatusRejected
	default:
		return StatusLocalOnly
	}
}
