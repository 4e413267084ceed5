package event

import (
	"context"
	"time"
)

// VoteEvent is the analytics record emitted after a committed vote
// mutation. It mirrors the submit result, not the full ledger row.
type VoteEvent struct {
	PollID    int64     `json:"poll_id"`
	OptionID  int64     `json:"option_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type VotePublisher interface {
	Publish(ctx context.Context, ev VoteEvent) error
	Close() error
}
