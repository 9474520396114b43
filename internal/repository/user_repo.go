package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo answers privilege and standing lookups over the access-control
// tables (VIP set, shadow-ban set, moderator warnings).
type UserRepo struct {
	pool          *pgxpool.Pool
	warningExpiry time.Duration
}

func NewUserRepo(pool *pgxpool.Pool, warningExpiry time.Duration) *UserRepo {
	return &UserRepo{pool: pool, warningExpiry: warningExpiry}
}

func (r *UserRepo) IsVIP(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM vip_users WHERE user_id = $1)`, userID).
		Scan(&exists)
	return exists, err
}

func (r *UserRepo) IsShadowBanned(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shadow_banned_users WHERE user_id = $1)`, userID).
		Scan(&exists)
	return exists, err
}

// ActiveWarnings counts enabled warnings issued within the expiry window.
func (r *UserRepo) ActiveWarnings(ctx context.Context, userID string) (int, error) {
	cutoff := time.Now().Add(-r.warningExpiry)
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM warnings
		WHERE user_id = $1 AND enabled = TRUE AND issued_at > $2`,
		userID, cutoff).Scan(&count)
	return count, err
}

func (r *UserRepo) HasSubmitted(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM segments WHERE user_id = $1)`, userID).
		Scan(&exists)
	return exists, err
}
