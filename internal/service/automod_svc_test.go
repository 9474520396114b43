package service

import (
	"context"
	"errors"
	"testing"

	"github.com/skipvault/skipvault-go/internal/model"
)

func TestAutoModDurationRatio(t *testing.T) {
	svc := NewAutoModService(testConfig(), nil, nil)
	ctx := context.Background()

	// A single 90s segment on a 100s video exceeds the 80% cap.
	_, err := svc.Check(ctx, submitReq("abc12345678", "abcdef", entry(5, 95, "sponsor")), 100)
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("want ValidationError, got %v", err)
	}

	// Unknown duration skips the gate.
	if _, err := svc.Check(ctx, submitReq("abc12345678", "abcdef", entry(5, 95, "sponsor")), 0); err != nil {
		t.Errorf("unknown duration should skip the ratio check: %v", err)
	}

	if _, err := svc.Check(ctx, submitReq("abc12345678", "abcdef", entry(5, 50, "sponsor")), 100); err != nil {
		t.Errorf("45%% segment should pass: %v", err)
	}
}

func TestAutoModClassifierFlagNotifiesOnly(t *testing.T) {
	events := &fakeEvents{}
	svc := NewAutoModService(testConfig(), &fakeClassifier{probs: []float64{0.4}}, events)

	result, err := svc.Check(context.Background(),
		submitReq("abc12345678", "abcdef", entry(10, 20, "sponsor")), 100)
	if err != nil {
		t.Fatalf("flagged segment must not be rejected: %v", err)
	}
	// Penalty policy is disabled: starting votes stay untouched.
	if len(result.StartingVotes) != 0 {
		t.Errorf("StartingVotes = %v, want empty with penalty disabled", result.StartingVotes)
	}
	if len(events.events) != 1 || events.events[0] != "moderation.flagged" {
		t.Errorf("events = %v, want one moderation.flagged", events.events)
	}
}

func TestAutoModClassifierPenaltyFlag(t *testing.T) {
	cfg := testConfig()
	cfg.ApplyClassifierPenalty = true
	svc := NewAutoModService(cfg, &fakeClassifier{probs: []float64{0.4}}, &fakeEvents{})

	result, err := svc.Check(context.Background(),
		submitReq("abc12345678", "abcdef", entry(10, 20, "sponsor")), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StartingVotes[0] != flaggedPenalty {
		t.Errorf("StartingVotes[0] = %d, want %d with penalty enabled", result.StartingVotes[0], flaggedPenalty)
	}
}

func TestAutoModFailsOpenOnClassifierError(t *testing.T) {
	svc := NewAutoModService(testConfig(),
		&fakeClassifier{err: errors.New("connection refused")}, &fakeEvents{})

	result, err := svc.Check(context.Background(),
		submitReq("abc12345678", "abcdef", entry(10, 20, "sponsor")), 100)
	if err != nil {
		t.Fatalf("classifier failure must fail open, got %v", err)
	}
	if len(result.StartingVotes) != 0 {
		t.Errorf("no penalties expected on fail-open, got %v", result.StartingVotes)
	}
}

func TestAutoModConfidentSegmentsPass(t *testing.T) {
	events := &fakeEvents{}
	svc := NewAutoModService(testConfig(), &fakeClassifier{probs: []float64{0.95}}, events)

	if _, err := svc.Check(context.Background(),
		submitReq("abc12345678", "abcdef", entry(10, 20, "sponsor")), 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.events) != 0 {
		t.Errorf("no flags expected above threshold, got %v", events.events)
	}
}
