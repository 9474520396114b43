package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/skipvault/skipvault-go/internal/model"
)

func TestTrustworthy(t *testing.T) {
	tests := []struct {
		name string
		hist model.SubmitterHistory
		want bool
	}{
		{"no history", model.SubmitterHistory{}, true},
		{"exactly 5 segments, all downvoted", model.SubmitterHistory{Total: 5, Downvoted: 5, VoteSum: -10}, true},
		{"6 segments, ratio exactly 0.6", model.SubmitterHistory{Total: 10, Downvoted: 6, VoteSum: 0}, false},
		{"6 segments, ratio just under 0.6", model.SubmitterHistory{Total: 100, Downvoted: 59, VoteSum: 0}, true},
		{"high ratio but vote sum outweighs", model.SubmitterHistory{Total: 10, Downvoted: 7, VoteSum: 8}, true},
		{"high ratio, vote sum equal to downvoted", model.SubmitterHistory{Total: 10, Downvoted: 7, VoteSum: 7}, false},
		{"clean history", model.SubmitterHistory{Total: 20, Downvoted: 1, VoteSum: 40}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trustworthy(tt.hist); got != tt.want {
				t.Errorf("Trustworthy(%+v) = %v, want %v", tt.hist, got, tt.want)
			}
		})
	}
}

func TestTrustworthyBoundary(t *testing.T) {
	// A submitter with 6 segments and ratio 0.6 must fail the strict < check.
	hist := model.SubmitterHistory{Total: 6, Downvoted: 4, VoteSum: 0}
	if Trustworthy(hist) {
		t.Error("ratio 0.667 with no vote surplus should be untrustworthy")
	}
	hist = model.SubmitterHistory{Total: 6, Downvoted: 3, VoteSum: 0}
	if !Trustworthy(hist) {
		t.Error("ratio 0.5 should be trustworthy")
	}
}

func TestRevealIfTrustworthy(t *testing.T) {
	store := newMemStore()
	svc := NewTrustService(store)
	ctx := context.Background()

	// Trusted submitter with three hidden segments: only two are revealed
	// per triggering vote.
	for i := range 3 {
		store.segments[fmt.Sprintf("hidden%d", i)] = &model.Segment{
			UUID: fmt.Sprintf("hidden%d", i), UserID: "alice", ShadowHidden: true,
		}
	}

	revealed, err := svc.RevealIfTrustworthy(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revealed != 2 {
		t.Errorf("revealed = %d, want 2", revealed)
	}

	hidden := 0
	for _, seg := range store.segments {
		if seg.ShadowHidden {
			hidden++
		}
	}
	if hidden != 1 {
		t.Errorf("hidden after reveal = %d, want 1", hidden)
	}
}

func TestRevealSkipsUntrustworthy(t *testing.T) {
	store := newMemStore()
	svc := NewTrustService(store)
	ctx := context.Background()

	// Ten segments, all downvoted: fails the ratio check.
	for i := range 10 {
		store.segments[fmt.Sprintf("seg%d", i)] = &model.Segment{
			UUID: fmt.Sprintf("seg%d", i), UserID: "mallory", Votes: -3, ShadowHidden: true,
		}
	}

	revealed, err := svc.RevealIfTrustworthy(ctx, "mallory")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revealed != 0 {
		t.Errorf("revealed = %d, want 0 for untrustworthy submitter", revealed)
	}
}
