package syncstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spec-kit/staff-roster/internal/cache"
	"github.com/spec-kit/staff-roster/internal/domain"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

// ExportEnvelope is the file format written by Export and read by Import.
type ExportEnvelope struct {
	SchemaVersion int              `json:"schemaVersion"`
	ExportedAt    string           `json:"exportedAt"`
	Staff         domain.StaffList `json:"staff"`
}

// Export snapshots the locally cached list.
func (s *Store) Export(ctx context.Context) ExportEnvelope {
	return ExportEnvelope{
		SchemaVersion: cache.SchemaVersion,
		ExportedAt:    time.Now().UTC().Format(domain.TimestampLayout),
		Staff:         s.cache.Read(ctx),
	}
}

// Import replaces the list with the contents of data and saves it.
//
// data may be an export envelope or a bare list. An envelope with another
// schema version, or text that is not JSON at all, is rejected before
// anything is written. Any other JSON value is sanitized like a list, so a
// value that is not a list imports as an empty roster.
func (s *Store) Import(ctx context.Context, data []byte, credential string, preferRemote bool) (Report, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Report{}, apperrors.NewValidationError("import file is not valid JSON", nil)
	}

	if obj, ok := raw.(map[string]any); ok {
		if version, present := obj["schemaVersion"]; present {
			if v, isNum := version.(float64); !isNum || v != float64(cache.SchemaVersion) {
				return Report{}, apperrors.NewValidationError("unsupported schemaVersion",
					map[string]any{"schemaVersion": version})
			}
			raw = obj["staff"]
		}
	}

	return s.SaveReport(ctx, s.sanitizer.List(raw), credential, preferRemote)
}
