package service

import "github.com/skipvault/skipvault-go/internal/model"

const (
	// Weight of a category vote cast by a VIP, and of the synthetic seed for
	// a segment whose submitter is a VIP.
	vipCategoryWeight = 500

	// Minimum tally lead required to flip an established category.
	minFlipMargin = 2
)

// ConsensusService tallies per-category vote weight for a segment and flips
// its assigned category when a candidate builds a sufficient lead. Each vote
// is a local delta; no global coordination is required, and a single
// non-VIP voter cannot flip a well-established category outright.
type ConsensusService struct{}

func NewConsensusService() *ConsensusService {
	return &ConsensusService{}
}

// Apply records voter's category proposal under an open segment lock and
// returns whether the segment's category flipped.
//
// The segment's current category is seeded lazily with a synthetic tally row
// the first time any category vote occurs, so the submission itself counts
// as a weak (or, for VIP submitters, decisive) vote for its own category and
// the tally logic stays uniform.
func (s *ConsensusService) Apply(tx LedgerTx, voterID, category string, voterVIP, submitterVIP bool) (bool, error) {
	seg := tx.Segment()

	if _, exists, err := tx.CategoryTally(seg.Category); err != nil {
		return false, err
	} else if !exists {
		seed := 1
		if submitterVIP {
			seed = vipCategoryWeight
		}
		if err := tx.AddCategoryTally(seg.Category, seed); err != nil {
			return false, err
		}
	}

	ballot, err := tx.PriorBallot(voterID)
	if err != nil {
		return false, err
	}
	if ballot != nil && ballot.Category == category {
		// Idempotent: voter's standing proposal is unchanged.
		return false, nil
	}

	weight := 1
	if voterVIP {
		weight = vipCategoryWeight
	}

	if ballot != nil {
		if err := tx.AddCategoryTally(ballot.Category, -ballot.Weight); err != nil {
			return false, err
		}
	}
	if err := tx.AddCategoryTally(category, weight); err != nil {
		return false, err
	}
	if err := tx.UpsertBallot(&model.CategoryBallot{
		UUID:     seg.UUID,
		UserID:   voterID,
		Category: category,
		Weight:   weight,
	}); err != nil {
		return false, err
	}

	if category == seg.Category {
		return false, nil
	}

	// VIP votes and the submitter's own correction are honored immediately.
	flip := voterVIP || voterID == seg.UserID
	if !flip {
		candidate, _, err := tx.CategoryTally(category)
		if err != nil {
			return false, err
		}
		current, _, err := tx.CategoryTally(seg.Category)
		if err != nil {
			return false, err
		}
		flip = candidate-current >= flipMargin(seg.Votes)
	}

	if !flip {
		return false, nil
	}
	return true, tx.SetCategory(category)
}

// flipMargin is the required lead: half the segment's vote count rounded up,
// with a floor of minFlipMargin.
func flipMargin(votes int) int {
	margin := (votes + 1) / 2
	if margin < minFlipMargin {
		margin = minFlipMargin
	}
	return margin
}
