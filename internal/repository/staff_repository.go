package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staff-roster/internal/domain"
)

// StaffRepository holds the authoritative staff list. The list is only ever
// replaced as a whole.
type StaffRepository interface {
	List(ctx context.Context) (domain.StaffList, error)
	ReplaceAll(ctx context.Context, list domain.StaffList) error
}

var staffColumns = []string{"position", "id", "nickname", "intro", "avatar_url", "updated_at"}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the postgres repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) List(ctx context.Context) (domain.StaffList, error) {
	const query = `
        SELECT position, id, nickname, intro, avatar_url, updated_at
        FROM staff_members ORDER BY position`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := domain.StaffList{}
	for rows.Next() {
		var rec domain.StaffRecord
		if err := rows.Scan(
			&rec.Order,
			&rec.ID,
			&rec.Nickname,
			&rec.Intro,
			&rec.AvatarURL,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// ReplaceAll swaps the table contents inside one transaction so readers see
// either the old list or the new one.
func (r *staffRepository) ReplaceAll(ctx context.Context, list domain.StaffList) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM staff_members`); err != nil {
		return err
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"staff_members"}, staffColumns,
		pgx.CopyFromSlice(len(list), func(i int) ([]any, error) {
			rec := list[i]
			return []any{i, rec.ID, rec.Nickname, rec.Intro, rec.AvatarURL, rec.UpdatedAt}, nil
		}))
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type memoryStaffRepository struct {
	mu   sync.RWMutex
	list domain.StaffList
}

// NewMemoryStaffRepository keeps the list in process memory. staffd falls
// back to it when no database is configured.
func NewMemoryStaffRepository() StaffRepository {
	return &memoryStaffRepository{list: domain.StaffList{}}
}

func (r *memoryStaffRepository) List(ctx context.Context) (domain.StaffList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list.Clone(), nil
}

func (r *memoryStaffRepository) ReplaceAll(ctx context.Context, list domain.StaffList) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = list.Clone()
	return nil
}
