package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skipvault/skipvault-go/internal/model"
	"github.com/skipvault/skipvault-go/internal/service"
)

// VoteRepo implements service.LedgerStore. All mutations to a segment's vote
// state run inside one transaction holding a row lock on the segment, so
// concurrent votes on the same segment serialize and the replace-not-accumulate
// invariant holds.
type VoteRepo struct {
	pool *pgxpool.Pool
}

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// RunSegmentTx locks the segment row and runs fn against it.
func (r *VoteRepo) RunSegmentTx(ctx context.Context, uuid string, fn func(tx service.LedgerTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	seg, err := scanSegment(tx.QueryRow(ctx,
		`SELECT `+segmentColumns+` FROM segments WHERE uuid = $1 FOR UPDATE`, uuid))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrSegmentNotFound
	}
	if err != nil {
		return err
	}

	if err := fn(&ledgerTx{ctx: ctx, tx: tx, seg: seg}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// VoteFromAddress reports whether another identity already voted on the
// segment from the same hashed network address.
func (r *VoteRepo) VoteFromAddress(ctx context.Context, uuid, ipHash, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM votes
			WHERE uuid = $1 AND ip_hash = $2 AND user_id <> $3
		)`, uuid, ipHash, userID).Scan(&exists)
	return exists, err
}

// ledgerTx is the transactional view over one locked segment.
type ledgerTx struct {
	ctx context.Context
	tx  pgx.Tx
	seg *model.Segment
}

func (t *ledgerTx) Segment() *model.Segment { return t.seg }

func (t *ledgerTx) PriorVote(voterID string) (*model.Vote, error) {
	var v model.Vote
	err := t.tx.QueryRow(t.ctx, `
		SELECT uuid, user_id, ip_hash, kind, weight, incorrect_weight
		FROM votes WHERE uuid = $1 AND user_id = $2`,
		t.seg.UUID, voterID).
		Scan(&v.UUID, &v.UserID, &v.IPHash, &v.Kind, &v.Weight, &v.IncorrectWeight)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *ledgerTx) UpsertVote(v *model.Vote) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO votes (uuid, user_id, ip_hash, kind, weight, incorrect_weight)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uuid, user_id) DO UPDATE
		SET kind = EXCLUDED.kind, weight = EXCLUDED.weight,
		    incorrect_weight = EXCLUDED.incorrect_weight, created_at = NOW()`,
		v.UUID, v.UserID, v.IPHash, v.Kind, v.Weight, v.IncorrectWeight)
	return err
}

func (t *ledgerTx) AddVotes(delta int) error {
	_, err := t.tx.Exec(t.ctx,
		`UPDATE segments SET votes = votes + $1 WHERE uuid = $2`, delta, t.seg.UUID)
	if err == nil {
		t.seg.Votes += delta
	}
	return err
}

func (t *ledgerTx) AddIncorrectVotes(delta int) error {
	_, err := t.tx.Exec(t.ctx,
		`UPDATE segments SET incorrect_votes = incorrect_votes + $1 WHERE uuid = $2`,
		delta, t.seg.UUID)
	if err == nil {
		t.seg.IncorrectVotes += delta
	}
	return err
}

func (t *ledgerTx) SetLocked(locked bool) error {
	_, err := t.tx.Exec(t.ctx,
		`UPDATE segments SET locked = $1 WHERE uuid = $2`, locked, t.seg.UUID)
	if err == nil {
		t.seg.Locked = locked
	}
	return err
}

func (t *ledgerTx) SetCategory(category string) error {
	_, err := t.tx.Exec(t.ctx,
		`UPDATE segments SET category = $1 WHERE uuid = $2`, category, t.seg.UUID)
	if err == nil {
		t.seg.Category = category
	}
	return err
}

func (t *ledgerTx) CategoryTally(category string) (int, bool, error) {
	var weight int
	err := t.tx.QueryRow(t.ctx,
		`SELECT weight FROM category_votes WHERE uuid = $1 AND category = $2`,
		t.seg.UUID, category).Scan(&weight)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return weight, true, nil
}

func (t *ledgerTx) AddCategoryTally(category string, delta int) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO category_votes (uuid, category, weight)
		VALUES ($1, $2, $3)
		ON CONFLICT (uuid, category) DO UPDATE
		SET weight = category_votes.weight + EXCLUDED.weight`,
		t.seg.UUID, category, delta)
	return err
}

func (t *ledgerTx) PriorBallot(voterID string) (*model.CategoryBallot, error) {
	var b model.CategoryBallot
	err := t.tx.QueryRow(t.ctx, `
		SELECT uuid, user_id, category, weight
		FROM category_ballots WHERE uuid = $1 AND user_id = $2`,
		t.seg.UUID, voterID).
		Scan(&b.UUID, &b.UserID, &b.Category, &b.Weight)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *ledgerTx) UpsertBallot(b *model.CategoryBallot) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO category_ballots (uuid, user_id, category, weight)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uuid, user_id) DO UPDATE
		SET category = EXCLUDED.category, weight = EXCLUDED.weight`,
		b.UUID, b.UserID, b.Category, b.Weight)
	return err
}
