package service

import (
	"context"

	"github.com/skipvault/skipvault-go/internal/model"
)

// SegmentStore is the narrow persistence contract for segment rows.
type SegmentStore interface {
	// Get returns a segment by UUID, or nil if it does not exist.
	Get(ctx context.Context, uuid string) (*model.Segment, error)

	// ExistsByContent reports whether a segment with identical
	// (videoID, category, startTime, endTime) already exists.
	ExistsByContent(ctx context.Context, videoID, category string, start, end float64) (bool, error)

	// Insert persists a new segment row.
	Insert(ctx context.Context, seg *model.Segment) error

	// ByVideo returns all deliverable segments for a video, optionally
	// filtered by category. Shadow-hidden and heavily downvoted rows are
	// excluded from delivery.
	ByVideo(ctx context.Context, videoID string, categories []string) ([]model.Segment, error)

	// ByHashPrefix returns deliverable segments for all videos whose hashed
	// ID starts with the given prefix.
	ByHashPrefix(ctx context.Context, prefix string) ([]model.Segment, error)

	// SubmitterRanges returns the accepted time ranges a submitter already
	// holds on a video, for coverage accounting.
	SubmitterRanges(ctx context.Context, videoID, userID string) ([][2]float64, error)

	// History aggregates a submitter's segment rows for trust evaluation.
	History(ctx context.Context, userID string) (model.SubmitterHistory, error)

	// Reveal un-hides up to limit shadow-hidden segments belonging to the
	// submitter and returns how many were revealed.
	Reveal(ctx context.Context, userID string, limit int) (int, error)

	// AddView increments a segment's view counter.
	AddView(ctx context.Context, uuid string) error
}

// UserStore answers privilege and standing questions about opaque identities.
// The underlying sets are owned by the access-control collaborator.
type UserStore interface {
	IsVIP(ctx context.Context, userID string) (bool, error)
	IsShadowBanned(ctx context.Context, userID string) (bool, error)

	// ActiveWarnings counts unexpired, enabled moderator warnings.
	ActiveWarnings(ctx context.Context, userID string) (int, error)

	// HasSubmitted reports whether the identity has at least one segment.
	HasSubmitted(ctx context.Context, userID string) (bool, error)
}

// LockStore exposes the per-video "no new submissions" category list.
type LockStore interface {
	IsCategoryLocked(ctx context.Context, videoID, category string) (bool, error)
	LockedCategories(ctx context.Context, videoID string) ([]string, error)
}

// LedgerTx is the unit of serialized work against one segment row. All reads
// and writes inside a transaction see and mutate a consistent snapshot;
// concurrent transactions on the same segment are serialized by the store.
type LedgerTx interface {
	// Segment returns the locked segment snapshot.
	Segment() *model.Segment

	PriorVote(voterID string) (*model.Vote, error)
	UpsertVote(v *model.Vote) error

	AddVotes(delta int) error
	AddIncorrectVotes(delta int) error
	SetLocked(locked bool) error
	SetCategory(category string) error

	// CategoryTally returns the accumulated weight for a candidate category
	// and whether a tally row exists yet.
	CategoryTally(category string) (int, bool, error)
	AddCategoryTally(category string, delta int) error

	PriorBallot(voterID string) (*model.CategoryBallot, error)
	UpsertBallot(b *model.CategoryBallot) error
}

// LedgerStore runs fn with exclusive access to one segment's rows. It returns
// model.ErrSegmentNotFound when the segment does not exist.
type LedgerStore interface {
	RunSegmentTx(ctx context.Context, uuid string, fn func(tx LedgerTx) error) error

	// VoteFromAddress reports whether any identity other than userID already
	// voted on the segment from the same hashed network address.
	VoteFromAddress(ctx context.Context, uuid, ipHash, userID string) (bool, error)
}

// EventSink receives fire-and-forget notifications. Implementations must
// never block the caller or surface failures.
type EventSink interface {
	Emit(event string, payload any)
}
