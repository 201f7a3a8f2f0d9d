// Package roster holds the caller-side list edits: add, edit, delete and
// reorder. Each returns a new list and leaves its input untouched; the
// result is persisted by handing it to the sync store's Save.
package roster

import (
	"time"

	"github.com/spec-kit/staff-roster/internal/domain"
)

// Find returns the first record with id.
func Find(list domain.StaffList, id string) (domain.StaffRecord, bool) {
	if idx := list.IndexOf(id); idx >= 0 {
		return list[idx], true
	}
	return domain.StaffRecord{}, false
}

// Upsert replaces the first record sharing rec's id in place, or appends rec.
// The replaced record's position is kept and rec is stamped as updated now.
func Upsert(list domain.StaffList, rec domain.StaffRecord) domain.StaffList {
	out := list.Clone()
	rec.UpdatedAt = time.Now().UTC().Format(domain.TimestampLayout)
	if rec.ID != "" {
		if idx := out.IndexOf(rec.ID); idx >= 0 {
			rec.Order = idx
			out[idx] = rec
			return out
		}
	}
	rec.Order = len(out)
	return append(out, rec)
}

// Delete removes every record with id.
func Delete(list domain.StaffList, id string) domain.StaffList {
	out := make(domain.StaffList, 0, len(list))
	for _, rec := range list {
		if rec.ID != id {
			out = append(out, rec)
		}
	}
	return out
}

// Move shifts the first record with id by delta positions (-1 up, +1 down).
// Moves past either end leave the list unchanged.
func Move(list domain.StaffList, id string, delta int) domain.StaffList {
	from := list.IndexOf(id)
	if from < 0 {
		return list.Clone()
	}
	return MoveTo(list, from, from+delta)
}

// MoveBefore moves dragID to targetID's position, as a drag-and-drop does.
func MoveBefore(list domain.StaffList, dragID, targetID string) domain.StaffList {
	if dragID == "" || targetID == "" || dragID == targetID {
		return list.Clone()
	}
	from, to := list.IndexOf(dragID), list.IndexOf(targetID)
	if from < 0 || to < 0 {
		return list.Clone()
	}
	return MoveTo(list, from, to)
}

// MoveTo removes the record at from and reinserts it at to.
func MoveTo(list domain.StaffList, from, to int) domain.StaffList {
	out := list.Clone()
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	rec := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append(domain.StaffList{rec}, out[to:]...)...)
	for i := range out {
		out[i].Order = i
	}
	return out
}
