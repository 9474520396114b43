package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/skipvault/skipvault-go/internal/model"
)

// SegmentService serves read-path segment lookups with a cache-aside layer.
type SegmentService struct {
	segments SegmentStore
	locks    LockStore
	cache    *CacheService
}

func NewSegmentService(segments SegmentStore, locks LockStore, cache *CacheService) *SegmentService {
	return &SegmentService{segments: segments, locks: locks, cache: cache}
}

// LookupByVideo returns deliverable segments for a video. Results are cached
// only for unfiltered lookups.
func (s *SegmentService) LookupByVideo(ctx context.Context, videoID string, categories []string) (*model.VideoSegments, error) {
	cacheable := len(categories) == 0 && s.cache != nil

	if cacheable {
		if data, err := s.cache.GetVideo(ctx, videoID); err == nil && data != nil {
			var cached model.VideoSegments
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	segs, err := s.segments.ByVideo(ctx, videoID, categories)
	if err != nil {
		return nil, err
	}

	resp := &model.VideoSegments{VideoID: videoID, Segments: segs}
	if cacheable {
		if err := s.cache.SetVideo(ctx, videoID, resp); err != nil {
			log.Warn().Err(err).Str("videoID", videoID).Msg("cache set failed")
		}
	}
	return resp, nil
}

// LookupByHashPrefix returns segments for all videos whose hashed ID starts
// with the given prefix, grouped per video. The prefix match keeps single
// video interest hidden from the server's access logs (k-anonymity).
func (s *SegmentService) LookupByHashPrefix(ctx context.Context, prefix string) ([]model.VideoSegments, error) {
	segs, err := s.segments.ByHashPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	byVideo := make(map[string]*model.VideoSegments)
	var order []string
	for _, seg := range segs {
		group, ok := byVideo[seg.VideoID]
		if !ok {
			group = &model.VideoSegments{VideoID: seg.VideoID}
			byVideo[seg.VideoID] = group
			order = append(order, seg.VideoID)
		}
		group.Segments = append(group.Segments, seg)
	}

	out := make([]model.VideoSegments, 0, len(order))
	for _, id := range order {
		out = append(out, *byVideo[id])
	}
	return out, nil
}

// RecordView increments a segment's view counter.
func (s *SegmentService) RecordView(ctx context.Context, uuid string) error {
	seg, err := s.segments.Get(ctx, uuid)
	if err != nil {
		return err
	}
	if seg == nil {
		return model.ErrSegmentNotFound
	}
	return s.segments.AddView(ctx, uuid)
}

// LockedCategories lists the categories closed for new submissions on a video.
func (s *SegmentService) LockedCategories(ctx context.Context, videoID string) ([]string, error) {
	return s.locks.LockedCategories(ctx, videoID)
}
