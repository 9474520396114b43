package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skipvault/skipvault-go/internal/client"
	"github.com/skipvault/skipvault-go/internal/config"
	"github.com/skipvault/skipvault-go/internal/model"
	"github.com/skipvault/skipvault-go/pkg/hash"
)

// MetadataFetcher supplies video metadata; implemented by client.MetadataClient.
type MetadataFetcher interface {
	Configured() bool
	FetchVideoMetadata(ctx context.Context, videoID string) (*client.VideoMetadata, error)
}

// SubmitService runs the full submission path: validation, auto-moderation,
// fingerprinting, commit and event emission.
type SubmitService struct {
	cfg      *config.Config
	segments SegmentStore
	users    UserStore
	validate *ValidateService
	automod  *AutoModService
	trust    *TrustService
	metadata MetadataFetcher
	events   EventSink
}

func NewSubmitService(
	cfg *config.Config,
	segments SegmentStore,
	users UserStore,
	validate *ValidateService,
	automod *AutoModService,
	trust *TrustService,
	metadata MetadataFetcher,
	events EventSink,
) *SubmitService {
	return &SubmitService{
		cfg:      cfg,
		segments: segments,
		users:    users,
		validate: validate,
		automod:  automod,
		trust:    trust,
		metadata: metadata,
		events:   events,
	}
}

// Submit validates and commits a batch. Validation and auto-moderation are
// all-or-nothing; commits are at-least-once per segment, with a storage
// failure reported for the first affected segment and earlier commits kept.
func (s *SubmitService) Submit(ctx context.Context, req *model.SubmitRequest, ipHash string) (*model.SubmitResponse, error) {
	isVIP, err := s.users.IsVIP(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	videoDuration := s.fetchDuration(ctx, req.VideoID)

	if err := s.validate.ValidateBatch(ctx, req, videoDuration, isVIP); err != nil {
		return nil, err
	}

	mod := &ModerationResult{StartingVotes: map[int]int{}}
	if !isVIP {
		mod, err = s.automod.Check(ctx, req, videoDuration)
		if err != nil {
			return nil, err
		}
	}

	shadowHidden, err := s.startingShadowHidden(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	resp := &model.SubmitResponse{}
	for i, entry := range req.Segments {
		seg := &model.Segment{
			UUID:         hash.Fingerprint(req.VideoID, entry.Category, req.UserID, entry.Segment[0], entry.Segment[1]),
			VideoID:      req.VideoID,
			StartTime:    entry.Segment[0],
			EndTime:      entry.Segment[1],
			Category:     entry.Category,
			Votes:        mod.StartingVotes[i],
			Locked:       isVIP,
			ShadowHidden: shadowHidden,
			UserID:       req.UserID,
			SubmittedAt:  time.Now().UTC(),
		}

		if err := s.segments.Insert(ctx, seg); err != nil {
			// Earlier segments in the batch stay committed.
			return resp, &model.StorageError{UUID: seg.UUID, Err: err}
		}

		resp.Segments = append(resp.Segments, model.SubmittedSegment{
			UUID:     seg.UUID,
			Segment:  entry.Segment,
			Category: entry.Category,
		})
	}

	return resp, nil
}

// NotifyCommitted emits one event per committed segment. Called after the
// client-visible response has been finalized; failures never propagate.
func (s *SubmitService) NotifyCommitted(req *model.SubmitRequest, resp *model.SubmitResponse) {
	if s.events == nil || resp == nil {
		return
	}
	for _, seg := range resp.Segments {
		s.events.Emit("segment.submitted", map[string]any{
			"UUID":     seg.UUID,
			"videoID":  req.VideoID,
			"userID":   req.UserID,
			"segment":  seg.Segment,
			"category": seg.Category,
		})
	}
}

// fetchDuration looks up total video duration, returning 0 (unknown) on any
// dependency failure so duration-based checks are skipped.
func (s *SubmitService) fetchDuration(ctx context.Context, videoID string) float64 {
	if s.metadata == nil || !s.metadata.Configured() {
		return 0
	}
	meta, err := s.metadata.FetchVideoMetadata(ctx, videoID)
	if err != nil {
		log.Warn().Err(err).Str("videoID", videoID).Msg("metadata unavailable, skipping duration checks")
		return 0
	}
	return meta.DurationSeconds
}

// startingShadowHidden hides new segments from banned or untrusted submitters.
func (s *SubmitService) startingShadowHidden(ctx context.Context, userID string) (bool, error) {
	banned, err := s.users.IsShadowBanned(ctx, userID)
	if err != nil {
		return false, err
	}
	if banned {
		return true, nil
	}
	trusted, err := s.trust.IsTrustworthy(ctx, userID)
	if err != nil {
		return false, err
	}
	return !trusted, nil
}
