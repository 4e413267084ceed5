package vote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"livepoll/internal/domain/poll"
)

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrPollNotActive  = errors.New("poll is not active")
	ErrOptionNotFound = errors.New("option not found")
	ErrConflict       = errors.New("concurrent vote conflict")
)

type Service struct {
	polls       poll.Repository
	votes       Repository
	cache       Cache
	broadcaster Broadcaster
}

func NewService(polls poll.Repository, votes Repository, cache Cache, broadcaster Broadcaster) *Service {
	return &Service{
		polls:       polls,
		votes:       votes,
		cache:       cache,
		broadcaster: broadcaster,
	}
}

// Submit reconciles one voter's vote in a poll: no existing vote creates
// one, a repeat of the same option cancels it, a different option moves it.
// An empty voterToken means a new voter and gets a generated token.
func (s *Service) Submit(ctx context.Context, pollID, optionID int64, voterToken string) (*SubmitResult, error) {
	p, options, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, poll.ErrNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrPollNotActive
	}
	if !optionBelongs(options, optionID) {
		return nil, ErrOptionNotFound
	}

	if voterToken == "" {
		voterToken = uuid.NewString()
	}

	res := &SubmitResult{
		PollID:     pollID,
		OptionID:   optionID,
		VoterToken: voterToken,
	}

	reconcile := func(r Repository) error {
		existing, err := r.Find(ctx, pollID, voterToken)
		if err != nil {
			return err
		}
		switch {
		case existing == nil:
			v := &Vote{PollID: pollID, OptionID: optionID, VoterToken: voterToken}
			if err := r.Insert(ctx, v); err != nil {
				return err
			}
			res.VoteID = &v.ID
			res.Action = ActionCreated
			res.PreviousOptionID = nil
		case existing.OptionID == optionID:
			if err := r.Delete(ctx, existing.ID); err != nil {
				return err
			}
			prev := existing.OptionID
			res.VoteID = nil
			res.Action = ActionCanceled
			res.PreviousOptionID = &prev
		default:
			if err := r.UpdateOption(ctx, existing.ID, optionID); err != nil {
				return err
			}
			prev := existing.OptionID
			id := existing.ID
			res.VoteID = &id
			res.Action = ActionUpdated
			res.PreviousOptionID = &prev
		}
		return nil
	}

	err = s.votes.InTx(ctx, reconcile)
	if errors.Is(err, ErrConflict) {
		// Lost a concurrent first-vote race; the re-read finds the
		// winner's row and falls into the update/cancel path.
		err = s.votes.InTx(ctx, reconcile)
	}
	if err != nil {
		return nil, err
	}

	s.applyCacheDelta(ctx, res)

	snap, err := s.buildSnapshot(ctx, pollID, options)
	if err != nil {
		slog.Error("results snapshot after vote failed", "poll_id", pollID, "error", err)
		return res, nil
	}
	s.broadcast(ctx, snap)

	return res, nil
}

// GetResults returns the current result snapshot for a poll, including
// zero-count options, in the poll's option sort order.
func (s *Service) GetResults(ctx context.Context, pollID int64) (*Snapshot, error) {
	_, options, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, poll.ErrNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	return s.buildSnapshot(ctx, pollID, options)
}

// GetActivePollResults returns results for the most-recently-created
// active poll.
func (s *Service) GetActivePollResults(ctx context.Context) (*Snapshot, error) {
	p, err := s.polls.FindLatestActive(ctx)
	if err != nil {
		if errors.Is(err, poll.ErrNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	return s.GetResults(ctx, p.ID)
}

// applyCacheDelta maintains warm cache counters incrementally. A cold
// cache is left alone: the next results read repopulates it wholesale,
// which avoids partially-correct cache state.
func (s *Service) applyCacheDelta(ctx context.Context, res *SubmitResult) {
	ready, err := s.cache.Ready(ctx, res.PollID)
	if err != nil {
		slog.Warn("cache readiness check failed", "poll_id", res.PollID, "error", err)
		return
	}
	if !ready {
		return
	}

	switch res.Action {
	case ActionCreated:
		err = s.cache.AddVote(ctx, res.PollID, res.OptionID)
	case ActionUpdated:
		err = s.cache.SwitchVote(ctx, res.PollID, *res.PreviousOptionID, res.OptionID)
	case ActionCanceled:
		err = s.cache.RemoveVote(ctx, res.PollID, *res.PreviousOptionID)
	}
	if err != nil {
		slog.Warn("cache delta failed", "poll_id", res.PollID, "action", res.Action, "error", err)
	}
}

func (s *Service) buildSnapshot(ctx context.Context, pollID int64, options []poll.Option) (*Snapshot, error) {
	counts, total, hasTotal, err := s.cache.Counts(ctx, pollID)
	if err != nil {
		slog.Warn("cache read failed, recomputing from ledger", "poll_id", pollID, "error", err)
		counts, err = s.votes.CountByOption(ctx, pollID)
		if err != nil {
			return nil, err
		}
		total = sumCounts(counts)
	} else if len(counts) == 0 && !hasTotal {
		counts, err = s.votes.CountByOption(ctx, pollID)
		if err != nil {
			return nil, err
		}
		total = sumCounts(counts)
		if err := s.cache.Store(ctx, pollID, counts, total); err != nil {
			slog.Warn("cache populate failed", "poll_id", pollID, "error", err)
		}
	} else if !hasTotal {
		total = sumCounts(counts)
		if err := s.cache.StoreTotal(ctx, pollID, total); err != nil {
			slog.Warn("cache total write failed", "poll_id", pollID, "error", err)
		}
	}

	items := make([]ResultItem, 0, len(options))
	for _, o := range options {
		items = append(items, ResultItem{
			OptionID: o.ID,
			Label:    o.Label,
			Count:    counts[o.ID],
		})
	}

	return &Snapshot{PollID: pollID, TotalVotes: total, Results: items}, nil
}

func (s *Service) broadcast(ctx context.Context, snap *Snapshot) {
	payload, err := json.Marshal(ResultsEvent{
		Type:       EventResultsUpdated,
		PollID:     snap.PollID,
		TotalVotes: snap.TotalVotes,
		Results:    snap.Results,
	})
	if err != nil {
		slog.Error("results event marshal failed", "poll_id", snap.PollID, "error", err)
		return
	}
	s.broadcaster.Broadcast(ctx, snap.PollID, payload)
}

func optionBelongs(options []poll.Option, optionID int64) bool {
	for _, o := range options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

func sumCounts(counts map[int64]int64) int64 {
	var total int64
	for _, c := range counts {
		total += c
	}
	return total
}
