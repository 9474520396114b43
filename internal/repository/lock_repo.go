package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LockRepo exposes the per-video "no new submissions" category list, owned
// by moderators.
type LockRepo struct {
	pool *pgxpool.Pool
}

func NewLockRepo(pool *pgxpool.Pool) *LockRepo {
	return &LockRepo{pool: pool}
}

func (r *LockRepo) IsCategoryLocked(ctx context.Context, videoID, category string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM lock_categories WHERE video_id = $1 AND category = $2
		)`, videoID, category).Scan(&exists)
	return exists, err
}

func (r *LockRepo) LockedCategories(ctx context.Context, videoID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category FROM lock_categories WHERE video_id = $1 ORDER BY category`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
