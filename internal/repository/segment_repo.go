package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skipvault/skipvault-go/internal/model"
	"github.com/skipvault/skipvault-go/pkg/hash"
)

// deliverableCond excludes shadow-hidden and heavily downvoted rows from
// normal delivery. Soft states only; rows are never physically deleted.
const deliverableCond = "shadow_hidden = FALSE AND votes > -2"

const segmentColumns = `uuid, video_id, start_time, end_time, category, votes,
	incorrect_votes, locked, shadow_hidden, views, user_id, submitted_at`

type SegmentRepo struct {
	pool *pgxpool.Pool
}

func NewSegmentRepo(pool *pgxpool.Pool) *SegmentRepo {
	return &SegmentRepo{pool: pool}
}

func scanSegment(row pgx.Row) (*model.Segment, error) {
	var s model.Segment
	err := row.Scan(
		&s.UUID, &s.VideoID, &s.StartTime, &s.EndTime, &s.Category, &s.Votes,
		&s.IncorrectVotes, &s.Locked, &s.ShadowHidden, &s.Views, &s.UserID, &s.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns a segment by UUID, or nil if it does not exist.
func (r *SegmentRepo) Get(ctx context.Context, uuid string) (*model.Segment, error) {
	seg, err := scanSegment(r.pool.QueryRow(ctx,
		`SELECT `+segmentColumns+` FROM segments WHERE uuid = $1`, uuid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return seg, err
}

// ExistsByContent reports whether an identical segment already exists.
func (r *SegmentRepo) ExistsByContent(ctx context.Context, videoID, category string, start, end float64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM segments
			WHERE video_id = $1 AND category = $2 AND start_time = $3 AND end_time = $4
		)`, videoID, category, start, end).Scan(&exists)
	return exists, err
}

// Insert persists a new segment row.
func (r *SegmentRepo) Insert(ctx context.Context, seg *model.Segment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO segments (uuid, video_id, hashed_video_id, start_time, end_time,
			category, votes, incorrect_votes, locked, shadow_hidden, views, user_id, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		seg.UUID, seg.VideoID, hash.SHA256Hex(seg.VideoID), seg.StartTime, seg.EndTime,
		seg.Category, seg.Votes, seg.IncorrectVotes, seg.Locked, seg.ShadowHidden,
		seg.Views, seg.UserID, seg.SubmittedAt)
	return err
}

// ByVideo returns deliverable segments for a video, optionally filtered by category.
func (r *SegmentRepo) ByVideo(ctx context.Context, videoID string, categories []string) ([]model.Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments
		WHERE video_id = $1 AND ` + deliverableCond
	args := []any{videoID}
	if len(categories) > 0 {
		query += ` AND category = ANY($2)`
		args = append(args, categories)
	}
	query += ` ORDER BY start_time, end_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSegments(rows)
}

// ByHashPrefix returns deliverable segments for all videos whose hashed ID
// starts with the given prefix.
func (r *SegmentRepo) ByHashPrefix(ctx context.Context, prefix string) ([]model.Segment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+segmentColumns+` FROM segments
		WHERE hashed_video_id LIKE $1 || '%' AND `+deliverableCond+`
		ORDER BY video_id, start_time
		LIMIT 1000`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSegments(rows)
}

func collectSegments(rows pgx.Rows) ([]model.Segment, error) {
	var segments []model.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *seg)
	}
	return segments, rows.Err()
}

// SubmitterRanges returns the accepted time ranges a submitter holds on a video.
func (r *SegmentRepo) SubmitterRanges(ctx context.Context, videoID, userID string) ([][2]float64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_time, end_time FROM segments
		WHERE video_id = $1 AND user_id = $2 AND `+deliverableCond,
		videoID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranges [][2]float64
	for rows.Next() {
		var iv [2]float64
		if err := rows.Scan(&iv[0], &iv[1]); err != nil {
			return nil, err
		}
		ranges = append(ranges, iv)
	}
	return ranges, rows.Err()
}

// History aggregates a submitter's segment rows for trust evaluation.
func (r *SegmentRepo) History(ctx context.Context, userID string) (model.SubmitterHistory, error) {
	var hist model.SubmitterHistory
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE votes < 0 OR shadow_hidden),
		       COALESCE(SUM(votes), 0)
		FROM segments WHERE user_id = $1`, userID).
		Scan(&hist.Total, &hist.Downvoted, &hist.VoteSum)
	return hist, err
}

// Reveal un-hides up to limit shadow-hidden segments belonging to the submitter.
func (r *SegmentRepo) Reveal(ctx context.Context, userID string, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE segments SET shadow_hidden = FALSE
		WHERE uuid IN (
			SELECT uuid FROM segments
			WHERE user_id = $1 AND shadow_hidden = TRUE
			ORDER BY submitted_at
			LIMIT $2
		)`, userID, limit)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// AddView increments a segment's view counter.
func (r *SegmentRepo) AddView(ctx context.Context, uuid string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE segments SET views = views + 1 WHERE uuid = $1`, uuid)
	return err
}
