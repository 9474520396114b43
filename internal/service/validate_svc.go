package service

import (
	"context"
	"math"
	"regexp"

	"github.com/skipvault/skipvault-go/internal/config"
	"github.com/skipvault/skipvault-go/internal/model"
)

var (
	videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
	userIDRe  = regexp.MustCompile(`^[0-9a-f]{1,64}$`)
)

// ValidateService performs structural and semantic validation of inbound
// submission batches before any persistence or external call. Checks run in
// a fixed order, each with a distinct rejection reason; the first failure
// short-circuits the rest and rejects the whole batch.
type ValidateService struct {
	cfg      *config.Config
	segments SegmentStore
	users    UserStore
	locks    LockStore
}

func NewValidateService(cfg *config.Config, segments SegmentStore, users UserStore, locks LockStore) *ValidateService {
	return &ValidateService{cfg: cfg, segments: segments, users: users, locks: locks}
}

// ValidateBatch runs all checks for a submission batch. videoDuration is the
// externally fetched total video duration in seconds; zero means unknown and
// skips the coverage check. isVIP lifts the category-lock and min-duration
// gates.
func (s *ValidateService) ValidateBatch(ctx context.Context, req *model.SubmitRequest, videoDuration float64, isVIP bool) error {
	if !videoIDRe.MatchString(req.VideoID) {
		return model.Validation("videoID is missing or malformed")
	}
	if !userIDRe.MatchString(req.UserID) {
		return model.Validation("userID is missing or malformed")
	}
	if len(req.Segments) == 0 {
		return model.Validation("at least one segment is required")
	}

	warnings, err := s.users.ActiveWarnings(ctx, req.UserID)
	if err != nil {
		return err
	}
	if warnings >= s.cfg.MaxWarnings {
		return model.ErrActiveWarning
	}

	for _, entry := range req.Segments {
		if err := s.validateEntry(ctx, req.VideoID, entry, isVIP); err != nil {
			return err
		}
	}

	// Exact-duplicate check runs after per-entry validation so a duplicate is
	// only ever reported for an otherwise well-formed segment.
	for _, entry := range req.Segments {
		exists, err := s.segments.ExistsByContent(ctx, req.VideoID, entry.Category, entry.Segment[0], entry.Segment[1])
		if err != nil {
			return err
		}
		if exists {
			return model.ErrDuplicate
		}
	}

	return s.checkCoverage(ctx, req, videoDuration)
}

func (s *ValidateService) validateEntry(ctx context.Context, videoID string, entry model.SegmentEntry, isVIP bool) error {
	if !s.cfg.CategoryAllowed(entry.Category) {
		return model.Validation("category %q is not allowed; must be one of: %s", entry.Category, s.cfg.CategoryList())
	}

	if !isVIP {
		locked, err := s.locks.IsCategoryLocked(ctx, videoID, entry.Category)
		if err != nil {
			return err
		}
		if locked {
			return model.Validation("new %q submissions are not being accepted for this video", entry.Category)
		}
	}

	start, end := entry.Segment[0], entry.Segment[1]
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return model.Validation("segment times must be finite numbers")
	}
	if start < 0 || start >= end {
		return model.Validation("segment times must satisfy 0 <= start < end")
	}
	if !isVIP && entry.Category == s.cfg.PrimaryCategory && end-start < s.cfg.MinDuration {
		return model.Validation("%s segments must be at least %.0f second(s) long", s.cfg.PrimaryCategory, s.cfg.MinDuration)
	}
	return nil
}

// checkCoverage rejects a batch whose merged coverage, together with the
// submitter's existing accepted segments on the video, exceeds the configured
// fraction of total video duration. Skipped when duration is unknown.
func (s *ValidateService) checkCoverage(ctx context.Context, req *model.SubmitRequest, videoDuration float64) error {
	if videoDuration <= 0 {
		return nil
	}

	existing, err := s.segments.SubmitterRanges(ctx, req.VideoID, req.UserID)
	if err != nil {
		return err
	}

	ranges := make([][2]float64, 0, len(existing)+len(req.Segments))
	ranges = append(ranges, existing...)
	for _, entry := range req.Segments {
		ranges = append(ranges, entry.Segment)
	}

	covered := TotalCovered(MergeIntervals(ranges))
	if covered > videoDuration*s.cfg.MaxCoverageRatio {
		return model.Validation("submissions would cover %.0f%% of the video; limit is %.0f%%",
			covered/videoDuration*100, s.cfg.MaxCoverageRatio*100)
	}
	return nil
}
