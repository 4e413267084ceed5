package vote

import (
	"context"
	"time"
)

type Vote struct {
	ID         int64     `json:"id"`
	PollID     int64     `json:"poll_id"`
	OptionID   int64     `json:"option_id"`
	VoterToken string    `json:"voter_token"`
	CreatedAt  time.Time `json:"created_at"`
}

// Action classifies what a vote submission did to the ledger.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionCanceled Action = "canceled"
)

type SubmitResult struct {
	VoteID           *int64 `json:"voteId"`
	PollID           int64  `json:"pollId"`
	OptionID         int64  `json:"optionId"`
	VoterToken       string `json:"voterToken"`
	Action           Action `json:"action"`
	PreviousOptionID *int64 `json:"previousOptionId,omitempty"`
}

type ResultItem struct {
	OptionID int64  `json:"optionId"`
	Label    string `json:"label"`
	Count    int64  `json:"count"`
}

type Snapshot struct {
	PollID     int64        `json:"pollId"`
	TotalVotes int64        `json:"totalVotes"`
	Results    []ResultItem `json:"results"`
}

// EventResultsUpdated is the type discriminator subscribers key on.
const EventResultsUpdated = "poll_results_updated"

type ResultsEvent struct {
	Type       string       `json:"type"`
	PollID     int64        `json:"pollId"`
	TotalVotes int64        `json:"totalVotes"`
	Results    []ResultItem `json:"results"`
}

// Repository is the durable vote ledger. Find returns (nil, nil) when the
// voter has no vote in the poll. Insert returns ErrConflict when another
// writer won the (poll_id, voter_token) uniqueness race.
type Repository interface {
	InTx(ctx context.Context, fn func(Repository) error) error
	Find(ctx context.Context, pollID int64, voterToken string) (*Vote, error)
	Insert(ctx context.Context, v *Vote) error
	UpdateOption(ctx context.Context, voteID, optionID int64) error
	Delete(ctx context.Context, voteID int64) error
	CountByOption(ctx context.Context, pollID int64) (map[int64]int64, error)
}

// Cache is the per-poll aggregate counter cache. It is an optimization
// only: every method may fail without affecting correctness.
type Cache interface {
	// Ready reports whether both the total counter and the option mapping
	// exist. Partial state counts as cold.
	Ready(ctx context.Context, pollID int64) (bool, error)
	// Counts returns the cached option mapping and total. hasTotal is
	// false when the total counter is absent; a cold cache yields an
	// empty mapping and hasTotal=false.
	Counts(ctx context.Context, pollID int64) (counts map[int64]int64, total int64, hasTotal bool, err error)
	Store(ctx context.Context, pollID int64, counts map[int64]int64, total int64) error
	StoreTotal(ctx context.Context, pollID int64, total int64) error
	AddVote(ctx context.Context, pollID, optionID int64) error
	SwitchVote(ctx context.Context, pollID, fromOption, toOption int64) error
	RemoveVote(ctx context.Context, pollID, optionID int64) error
}

// Broadcaster fans a payload out to a poll's live subscribers. Delivery
// failures are contained by the implementation and never surfaced.
type Broadcaster interface {
	Broadcast(ctx context.Context, pollID int64, payload []byte)
}
