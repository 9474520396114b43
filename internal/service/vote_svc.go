package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/skipvault/skipvault-go/internal/config"
	"github.com/skipvault/skipvault-go/internal/model"
)

// Weight constants for the tagged vote variants.
const (
	incorrectFlagWeight    = 1
	incorrectFlagWeightVIP = 500

	// rescueFloor: segments at or below this vote count cannot be upvoted
	// back by non-VIP voters other than the submitter.
	rescueFloor = -2
)

// NormalWeight is the pure base-weight function over a vote kind for the
// normal vote counter. The VIP downvote override is handled at delta level
// in applyNormalVote.
func NormalWeight(k model.VoteKind) int {
	switch k {
	case model.KindUpvote:
		return 1
	case model.KindDownvote:
		return -1
	default:
		return 0
	}
}

// IncorrectWeight is the pure weight function for the separate
// incorrect-flag counter.
func IncorrectWeight(k model.VoteKind, vip bool) int {
	w := incorrectFlagWeight
	if vip {
		w = incorrectFlagWeightVIP
	}
	switch k {
	case model.KindIncorrectUp:
		return w
	case model.KindIncorrectDown:
		return -w
	default:
		return 0
	}
}

// VoteService applies a voter's current opinion to a segment, replacing any
// prior vote by the same voter so the displayed count always equals the sum
// of each voter's latest vote.
type VoteService struct {
	cfg       *config.Config
	ledger    LedgerStore
	segments  SegmentStore
	users     UserStore
	locks     LockStore
	trust     *TrustService
	consensus *ConsensusService
	cache     *CacheService
	events    EventSink
}

func NewVoteService(
	cfg *config.Config,
	ledger LedgerStore,
	segments SegmentStore,
	users UserStore,
	locks LockStore,
	trust *TrustService,
	consensus *ConsensusService,
	cache *CacheService,
	events EventSink,
) *VoteService {
	return &VoteService{
		cfg:       cfg,
		ledger:    ledger,
		segments:  segments,
		users:     users,
		locks:     locks,
		trust:     trust,
		consensus: consensus,
		cache:     cache,
		events:    events,
	}
}

// Cast processes one vote request. Ineligible votes return nil without any
// ledger mutation; the HTTP layer reports success either way so probing
// clients cannot map eligibility. Only the documented lock and warning cases
// surface as errors.
func (s *VoteService) Cast(ctx context.Context, req model.VoteRequest, ipHash string) error {
	warnings, err := s.users.ActiveWarnings(ctx, req.UserID)
	if err != nil {
		return err
	}
	if warnings >= s.cfg.MaxWarnings {
		return model.ErrActiveWarning
	}

	seg, err := s.segments.Get(ctx, req.UUID)
	if err != nil {
		return err
	}
	if seg == nil {
		return model.ErrSegmentNotFound
	}

	isVIP, err := s.users.IsVIP(ctx, req.UserID)
	if err != nil {
		return err
	}

	if req.Category != "" {
		return s.castCategory(ctx, req, seg, isVIP)
	}

	kind, ok := model.KindFromWire(req.Type)
	if !ok {
		return model.Validation("unknown vote type %d", req.Type)
	}

	if kind == model.KindDownvote && !isVIP {
		catLocked, err := s.locks.IsCategoryLocked(ctx, seg.VideoID, seg.Category)
		if err != nil {
			return err
		}
		if seg.Locked || catLocked {
			return model.ErrLockedDownvote
		}
	}

	eligible, err := s.ableToVote(ctx, req.UUID, req.UserID, ipHash, isVIP)
	if err != nil {
		return err
	}
	if !eligible {
		log.Debug().Str("uuid", req.UUID).Msg("ineligible vote ignored")
		return nil
	}

	// Rescue prevention: heavily downvoted segments cannot be upvoted back
	// except by the submitter or a VIP. Silent no-op, like eligibility.
	if kind == model.KindUpvote && seg.Votes <= rescueFloor && !isVIP && req.UserID != seg.UserID {
		log.Debug().Str("uuid", req.UUID).Msg("rescue upvote ignored")
		return nil
	}

	var positive bool
	var submitterID string
	err = s.ledger.RunSegmentTx(ctx, req.UUID, func(tx LedgerTx) error {
		var txErr error
		positive, txErr = s.applyNormalVote(tx, req.UserID, ipHash, kind, isVIP)
		submitterID = tx.Segment().UserID
		return txErr
	})
	if err != nil {
		return err
	}

	s.afterVote(ctx, seg.VideoID, req, positive, submitterID)
	return nil
}

// applyNormalVote computes and applies the replace-not-accumulate delta for
// normal and incorrect-flag votes under the segment lock. Returns whether
// the applied normal delta was positive.
func (s *VoteService) applyNormalVote(tx LedgerTx, userID, ipHash string, kind model.VoteKind, isVIP bool) (bool, error) {
	seg := tx.Segment()

	prior, err := tx.PriorVote(userID)
	if err != nil {
		return false, err
	}
	priorWeight, priorIncorrect := 0, 0
	if prior != nil {
		if prior.Kind == kind {
			// Re-casting the identical vote is idempotent.
			return false, nil
		}
		priorWeight = prior.Weight
		priorIncorrect = prior.IncorrectWeight
	}

	var deltaNormal int
	if kind == model.KindDownvote && isVIP {
		// Privileged downvotes are decisive, not additive: the delta drives
		// the segment to a fixed low value regardless of its current count.
		deltaNormal = -(seg.Votes + 2 - priorWeight)
	} else {
		deltaNormal = NormalWeight(kind) - priorWeight
	}
	deltaIncorrect := IncorrectWeight(kind, isVIP) - priorIncorrect

	if deltaNormal != 0 {
		if err := tx.AddVotes(deltaNormal); err != nil {
			return false, err
		}
	}
	if deltaIncorrect != 0 {
		if err := tx.AddIncorrectVotes(deltaIncorrect); err != nil {
			return false, err
		}
	}

	if err := tx.UpsertVote(&model.Vote{
		UUID:            seg.UUID,
		UserID:          userID,
		IPHash:          ipHash,
		Kind:            kind,
		Weight:          priorWeight + deltaNormal,
		IncorrectWeight: priorIncorrect + deltaIncorrect,
	}); err != nil {
		return false, err
	}

	if kind == model.KindUpvote && isVIP {
		if err := tx.SetLocked(true); err != nil {
			return false, err
		}
	}

	return deltaNormal > 0, nil
}

// castCategory routes a category-type vote through the consensus resolver
// under the same segment lock discipline as normal votes.
func (s *VoteService) castCategory(ctx context.Context, req model.VoteRequest, seg *model.Segment, isVIP bool) error {
	if !s.cfg.CategoryAllowed(req.Category) {
		return model.Validation("category %q is not allowed; must be one of: %s", req.Category, s.cfg.CategoryList())
	}

	eligible, err := s.ableToVote(ctx, req.UUID, req.UserID, ipHashUnused, isVIP)
	if err != nil {
		return err
	}
	if !eligible {
		return nil
	}
	if seg.Locked && !isVIP && req.UserID != seg.UserID {
		log.Debug().Str("uuid", req.UUID).Msg("category vote on locked segment ignored")
		return nil
	}

	submitterVIP, err := s.users.IsVIP(ctx, seg.UserID)
	if err != nil {
		return err
	}

	var flipped bool
	err = s.ledger.RunSegmentTx(ctx, req.UUID, func(tx LedgerTx) error {
		var txErr error
		flipped, txErr = s.consensus.Apply(tx, req.UserID, req.Category, isVIP, submitterVIP)
		return txErr
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, seg.VideoID)
	if s.events != nil {
		s.events.Emit("vote.category", map[string]any{
			"UUID":     req.UUID,
			"category": req.Category,
			"flipped":  flipped,
		})
	}
	return nil
}

// ipHashUnused marks category votes, whose address dedup rides on the ballot
// table's (uuid, userID) key instead.
const ipHashUnused = ""

// ableToVote gates non-VIP voters: they must have submitted at least one
// segment, must not be shadow-banned, and must not have voted on this
// segment from the same address under a different identity.
func (s *VoteService) ableToVote(ctx context.Context, uuid, userID, ipHash string, isVIP bool) (bool, error) {
	if isVIP {
		return true, nil
	}
	submitted, err := s.users.HasSubmitted(ctx, userID)
	if err != nil {
		return false, err
	}
	if !submitted {
		return false, nil
	}
	banned, err := s.users.IsShadowBanned(ctx, userID)
	if err != nil {
		return false, err
	}
	if banned {
		return false, nil
	}
	if ipHash != "" {
		duplicate, err := s.ledger.VoteFromAddress(ctx, uuid, ipHash, userID)
		if err != nil {
			return false, err
		}
		if duplicate {
			return false, nil
		}
	}
	return true, nil
}

// afterVote runs detached side effects: cache invalidation, trust re-check
// on a positive vote, and event emission.
func (s *VoteService) afterVote(ctx context.Context, videoID string, req model.VoteRequest, positive bool, submitterID string) {
	s.invalidate(ctx, videoID)

	if positive && submitterID != "" {
		revealed, err := s.trust.RevealIfTrustworthy(ctx, submitterID)
		if err != nil {
			log.Warn().Err(err).Str("submitter", submitterID).Msg("trust re-check failed")
		} else if revealed > 0 {
			log.Info().Int("revealed", revealed).Str("submitter", submitterID).
				Msg("shadow-hidden segments revealed")
		}
	}

	if s.events != nil {
		s.events.Emit("vote.cast", map[string]any{
			"UUID": req.UUID,
			"type": req.Type,
		})
	}
}

func (s *VoteService) invalidate(ctx context.Context, videoID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateVideo(ctx, videoID); err != nil {
		log.Warn().Err(err).Str("videoID", videoID).Msg("cache invalidate failed")
	}
}
