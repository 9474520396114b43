package service

import (
	"context"

	"github.com/skipvault/skipvault-go/internal/model"
)

const (
	// Submitters with this many segments or fewer are trusted by default;
	// there is not enough data to distrust them.
	trustMinHistory = 5

	// Strict upper bound on the downvoted fraction of a history.
	trustMaxDownvoteRatio = 0.6

	// How many shadow-hidden segments a single qualifying vote may reveal.
	revealLimit = 2
)

// TrustService decides whether a submitter's history qualifies them as
// trustworthy. Stateless; aggregates are recomputed from the authoritative
// store on every call to avoid staleness under concurrent voting.
type TrustService struct {
	segments SegmentStore
}

func NewTrustService(segments SegmentStore) *TrustService {
	return &TrustService{segments: segments}
}

// IsTrustworthy evaluates a submitter identity against their segment history.
func (s *TrustService) IsTrustworthy(ctx context.Context, userID string) (bool, error) {
	hist, err := s.segments.History(ctx, userID)
	if err != nil {
		return false, err
	}
	return Trustworthy(hist), nil
}

// Trustworthy is the pure policy over a history aggregate: small histories
// are trusted by default; otherwise the downvoted fraction must stay under
// the threshold, or the net vote sum must outweigh the downvoted count.
func Trustworthy(hist model.SubmitterHistory) bool {
	if hist.Total <= trustMinHistory {
		return true
	}
	ratio := float64(hist.Downvoted) / float64(hist.Total)
	return ratio < trustMaxDownvoteRatio || hist.VoteSum > hist.Downvoted
}

// RevealIfTrustworthy re-checks a submitter after a positive vote and, if they
// now qualify, un-hides up to revealLimit of their shadow-hidden segments.
// Returns how many segments were revealed.
func (s *TrustService) RevealIfTrustworthy(ctx context.Context, userID string) (int, error) {
	ok, err := s.IsTrustworthy(ctx, userID)
	if err != nil || !ok {
		return 0, err
	}
	return s.segments.Reveal(ctx, userID, revealLimit)
}
