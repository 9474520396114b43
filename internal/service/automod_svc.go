package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/skipvault/skipvault-go/internal/config"
	"github.com/skipvault/skipvault-go/internal/model"
)

// Classifier scores candidate ranges; implemented by client.ClassifierClient.
type Classifier interface {
	Configured() bool
	Classify(ctx context.Context, videoID string, ranges [][2]float64) ([]float64, error)
}

// flaggedPenalty is the starting-vote penalty computed for classifier-flagged
// segments. Applied only when ApplyClassifierPenalty is enabled.
const flaggedPenalty = -1

// AutoModService is the policy gate behind validation, bypassed entirely for
// VIP submitters. Any external dependency failure fails open: availability is
// preferred over strictness.
type AutoModService struct {
	cfg        *config.Config
	classifier Classifier
	events     EventSink
}

func NewAutoModService(cfg *config.Config, classifier Classifier, events EventSink) *AutoModService {
	return &AutoModService{cfg: cfg, classifier: classifier, events: events}
}

// ModerationResult carries the outcome of auto-moderation for a batch.
// StartingVotes holds a per-segment-index starting vote count; entries are
// zero unless the classifier penalty policy is enabled.
type ModerationResult struct {
	StartingVotes map[int]int
}

// Check runs both gates over a validated batch. A returned error is always a
// *model.ValidationError carrying the rejection reason; dependency failures
// never reject.
func (s *AutoModService) Check(ctx context.Context, req *model.SubmitRequest, videoDuration float64) (*ModerationResult, error) {
	result := &ModerationResult{StartingVotes: make(map[int]int)}

	if videoDuration > 0 {
		for _, entry := range req.Segments {
			if entry.Segment[1]-entry.Segment[0] > videoDuration*s.cfg.MaxCoverageRatio {
				return nil, model.Validation("segment covers more than %.0f%% of the video",
					s.cfg.MaxCoverageRatio*100)
			}
		}
	}

	s.classifierCheck(ctx, req, result)
	return result, nil
}

// classifierCheck flags low-confidence segments of the primary category.
// Current policy only notifies a human moderation channel; the computed
// penalty is discarded unless ApplyClassifierPenalty is set.
func (s *AutoModService) classifierCheck(ctx context.Context, req *model.SubmitRequest, result *ModerationResult) {
	if s.classifier == nil || !s.classifier.Configured() {
		return
	}

	var ranges [][2]float64
	var indexes []int
	for i, entry := range req.Segments {
		if entry.Category == s.cfg.PrimaryCategory {
			ranges = append(ranges, entry.Segment)
			indexes = append(indexes, i)
		}
	}
	if len(ranges) == 0 {
		return
	}

	probs, err := s.classifier.Classify(ctx, req.VideoID, ranges)
	if err != nil {
		// Fail open: never block submissions on an external dependency.
		log.Warn().Err(err).Str("videoID", req.VideoID).Msg("classifier unavailable, failing open")
		return
	}

	for i, p := range probs {
		if p >= s.cfg.ClassifierThreshold {
			continue
		}
		idx := indexes[i]
		entry := req.Segments[idx]

		penalty := flaggedPenalty
		if s.cfg.ApplyClassifierPenalty {
			result.StartingVotes[idx] = penalty
		} else {
			log.Info().Str("videoID", req.VideoID).Float64("probability", p).
				Int("discardedPenalty", penalty).Msg("classifier flag, penalty disabled")
		}

		if s.events != nil {
			s.events.Emit("moderation.flagged", map[string]any{
				"videoID":     req.VideoID,
				"userID":      req.UserID,
				"segment":     entry.Segment,
				"category":    entry.Category,
				"probability": p,
			})
		}
	}
}
