package model

import "time"

// Segment represents one crowdsourced time-range annotation on a video.
type Segment struct {
	UUID           string    `json:"UUID"`
	VideoID        string    `json:"videoID"`
	StartTime      float64   `json:"startTime"`
	EndTime        float64   `json:"endTime"`
	Category       string    `json:"category"`
	Votes          int       `json:"votes"`
	IncorrectVotes int       `json:"-"`
	Locked         bool      `json:"locked"`
	ShadowHidden   bool      `json:"-"`
	Views          int       `json:"views"`
	UserID         string    `json:"-"`
	SubmittedAt    time.Time `json:"-"`
}

// Duration returns the annotated span in seconds.
func (s *Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// SubmitRequest is the API request body for submitting a batch of segments.
type SubmitRequest struct {
	VideoID  string         `json:"videoID"`
	UserID   string         `json:"userID"`
	Segments []SegmentEntry `json:"segments"`
}

// SegmentEntry is one candidate segment in a submission batch.
type SegmentEntry struct {
	Segment  [2]float64 `json:"segment"`
	Category string     `json:"category"`
}

// SubmitResponse lists the identifiers created for an accepted batch.
type SubmitResponse struct {
	Segments []SubmittedSegment `json:"segments"`
}

// SubmittedSegment echoes one created segment back to the client.
type SubmittedSegment struct {
	UUID     string     `json:"UUID"`
	Segment  [2]float64 `json:"segment"`
	Category string     `json:"category"`
}

// SubmitterHistory aggregates a submitter's historical segment rows for
// trust evaluation. Downvoted counts rows with votes < 0 or shadow-hidden.
type SubmitterHistory struct {
	Total     int
	Downvoted int
	VoteSum   int
}

// VideoSegments is the API response for per-video segment lookups.
type VideoSegments struct {
	VideoID  string    `json:"videoID"`
	Segments []Segment `json:"segments"`
}
