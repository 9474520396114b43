package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/skipvault/skipvault-go/internal/client"
	"github.com/skipvault/skipvault-go/internal/model"
)

// memStore is an in-memory implementation of the store contracts used across
// the service tests.
type memStore struct {
	segments map[string]*model.Segment
	votes    map[string]*model.Vote
	ballots  map[string]*model.CategoryBallot
	tallies  map[string]int
	vips     map[string]bool
	banned   map[string]bool
	warnings map[string]int
	locked   map[string]bool

	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		segments: make(map[string]*model.Segment),
		votes:    make(map[string]*model.Vote),
		ballots:  make(map[string]*model.CategoryBallot),
		tallies:  make(map[string]int),
		vips:     make(map[string]bool),
		banned:   make(map[string]bool),
		warnings: make(map[string]int),
		locked:   make(map[string]bool),
	}
}

func voteKey(uuid, userID string) string  { return uuid + "|" + userID }
func lockKey(videoID, cat string) string  { return videoID + "|" + cat }
func tallyKey(uuid, category string) string { return uuid + "|" + category }

// --- SegmentStore ---

func (m *memStore) Get(_ context.Context, uuid string) (*model.Segment, error) {
	seg, ok := m.segments[uuid]
	if !ok {
		return nil, nil
	}
	cp := *seg
	return &cp, nil
}

func (m *memStore) ExistsByContent(_ context.Context, videoID, category string, start, end float64) (bool, error) {
	for _, seg := range m.segments {
		if seg.VideoID == videoID && seg.Category == category &&
			seg.StartTime == start && seg.EndTime == end {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Insert(_ context.Context, seg *model.Segment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	cp := *seg
	m.segments[seg.UUID] = &cp
	return nil
}

func (m *memStore) ByVideo(_ context.Context, videoID string, categories []string) ([]model.Segment, error) {
	var out []model.Segment
	for _, seg := range m.segments {
		if seg.VideoID != videoID || seg.ShadowHidden || seg.Votes <= -2 {
			continue
		}
		if len(categories) > 0 && !contains(categories, seg.Category) {
			continue
		}
		out = append(out, *seg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *memStore) ByHashPrefix(_ context.Context, prefix string) ([]model.Segment, error) {
	return nil, fmt.Errorf("not used in tests")
}

func (m *memStore) SubmitterRanges(_ context.Context, videoID, userID string) ([][2]float64, error) {
	var out [][2]float64
	for _, seg := range m.segments {
		if seg.VideoID == videoID && seg.UserID == userID && !seg.ShadowHidden && seg.Votes > -2 {
			out = append(out, [2]float64{seg.StartTime, seg.EndTime})
		}
	}
	return out, nil
}

func (m *memStore) History(_ context.Context, userID string) (model.SubmitterHistory, error) {
	var hist model.SubmitterHistory
	for _, seg := range m.segments {
		if seg.UserID != userID {
			continue
		}
		hist.Total++
		hist.VoteSum += seg.Votes
		if seg.Votes < 0 || seg.ShadowHidden {
			hist.Downvoted++
		}
	}
	return hist, nil
}

func (m *memStore) Reveal(_ context.Context, userID string, limit int) (int, error) {
	revealed := 0
	for _, seg := range m.segments {
		if revealed == limit {
			break
		}
		if seg.UserID == userID && seg.ShadowHidden {
			seg.ShadowHidden = false
			revealed++
		}
	}
	return revealed, nil
}

func (m *memStore) AddView(_ context.Context, uuid string) error {
	if seg, ok := m.segments[uuid]; ok {
		seg.Views++
	}
	return nil
}

// --- UserStore ---

func (m *memStore) IsVIP(_ context.Context, userID string) (bool, error) {
	return m.vips[userID], nil
}

func (m *memStore) IsShadowBanned(_ context.Context, userID string) (bool, error) {
	return m.banned[userID], nil
}

func (m *memStore) ActiveWarnings(_ context.Context, userID string) (int, error) {
	return m.warnings[userID], nil
}

func (m *memStore) HasSubmitted(_ context.Context, userID string) (bool, error) {
	for _, seg := range m.segments {
		if seg.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// --- LockStore ---

func (m *memStore) IsCategoryLocked(_ context.Context, videoID, category string) (bool, error) {
	return m.locked[lockKey(videoID, category)], nil
}

func (m *memStore) LockedCategories(_ context.Context, videoID string) ([]string, error) {
	var out []string
	for key, locked := range m.locked {
		if locked && strings.HasPrefix(key, videoID+"|") {
			out = append(out, strings.TrimPrefix(key, videoID+"|"))
		}
	}
	return out, nil
}

// --- LedgerStore ---

func (m *memStore) RunSegmentTx(_ context.Context, uuid string, fn func(tx LedgerTx) error) error {
	seg, ok := m.segments[uuid]
	if !ok {
		return model.ErrSegmentNotFound
	}
	return fn(&memTx{store: m, seg: seg})
}

func (m *memStore) VoteFromAddress(_ context.Context, uuid, ipHash, userID string) (bool, error) {
	for _, v := range m.votes {
		if v.UUID == uuid && v.IPHash == ipHash && v.UserID != userID {
			return true, nil
		}
	}
	return false, nil
}

type memTx struct {
	store *memStore
	seg   *model.Segment
}

func (t *memTx) Segment() *model.Segment { return t.seg }

func (t *memTx) PriorVote(voterID string) (*model.Vote, error) {
	v, ok := t.store.votes[voteKey(t.seg.UUID, voterID)]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (t *memTx) UpsertVote(v *model.Vote) error {
	cp := *v
	t.store.votes[voteKey(v.UUID, v.UserID)] = &cp
	return nil
}

func (t *memTx) AddVotes(delta int) error {
	t.seg.Votes += delta
	return nil
}

func (t *memTx) AddIncorrectVotes(delta int) error {
	t.seg.IncorrectVotes += delta
	return nil
}

func (t *memTx) SetLocked(locked bool) error {
	t.seg.Locked = locked
	return nil
}

func (t *memTx) SetCategory(category string) error {
	t.seg.Category = category
	return nil
}

func (t *memTx) CategoryTally(category string) (int, bool, error) {
	w, ok := t.store.tallies[tallyKey(t.seg.UUID, category)]
	return w, ok, nil
}

func (t *memTx) AddCategoryTally(category string, delta int) error {
	t.store.tallies[tallyKey(t.seg.UUID, category)] += delta
	return nil
}

func (t *memTx) PriorBallot(voterID string) (*model.CategoryBallot, error) {
	b, ok := t.store.ballots[voteKey(t.seg.UUID, voterID)]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (t *memTx) UpsertBallot(b *model.CategoryBallot) error {
	cp := *b
	t.store.ballots[voteKey(b.UUID, b.UserID)] = &cp
	return nil
}

// --- collaborators ---

type fakeEvents struct {
	events []string
}

func (f *fakeEvents) Emit(name string, _ any) {
	f.events = append(f.events, name)
}

type fakeClassifier struct {
	probs []float64
	err   error
}

func (f *fakeClassifier) Configured() bool { return true }

func (f *fakeClassifier) Classify(_ context.Context, _ string, ranges [][2]float64) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.probs[:len(ranges)], nil
}

type fakeMetadata struct {
	duration float64
	err      error
}

func (f *fakeMetadata) Configured() bool { return true }

func (f *fakeMetadata) FetchVideoMetadata(_ context.Context, _ string) (*client.VideoMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &client.VideoMetadata{DurationSeconds: f.duration}, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
