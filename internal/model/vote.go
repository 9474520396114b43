package model

// VoteKind is the tagged variant for a vote's meaning. Weight computation is
// a pure function over the kind (see service.NormalWeight), never over raw
// magic numbers on the wire.
type VoteKind string

const (
	KindUpvote        VoteKind = "upvote"
	KindDownvote      VoteKind = "downvote"
	KindUnvote        VoteKind = "unvote"
	KindIncorrectUp   VoteKind = "incorrect"
	KindIncorrectDown VoteKind = "incorrect_undo"
)

// Wire encoding of vote types, kept small-integer for client compatibility.
const (
	WireDownvote      = 0
	WireUpvote        = 1
	WireIncorrectDown = 12
	WireIncorrectUp   = 13
	WireUnvote        = 20
)

// KindFromWire decodes the wire integer into a VoteKind.
// The second return is false for unknown types.
func KindFromWire(t int) (VoteKind, bool) {
	switch t {
	case WireDownvote:
		return KindDownvote, true
	case WireUpvote:
		return KindUpvote, true
	case WireIncorrectDown:
		return KindIncorrectDown, true
	case WireIncorrectUp:
		return KindIncorrectUp, true
	case WireUnvote:
		return KindUnvote, true
	default:
		return "", false
	}
}

// Vote is one voter's standing opinion on one segment. A new vote replaces
// the prior row; Weight and IncorrectWeight record the applied contributions
// so the next replacement can compute an exact delta.
type Vote struct {
	UUID            string
	UserID          string
	IPHash          string
	Kind            VoteKind
	Weight          int
	IncorrectWeight int
}

// CategoryBallot is one voter's current category proposal for a segment.
type CategoryBallot struct {
	UUID     string
	UserID   string
	Category string
	Weight   int
}

// VoteRequest is the API request body for all vote kinds. A non-empty
// Category makes this a category vote; otherwise Type is decoded per
// KindFromWire.
type VoteRequest struct {
	UUID     string `json:"UUID"`
	UserID   string `json:"userID"`
	Type     int    `json:"type"`
	Category string `json:"category,omitempty"`
}
