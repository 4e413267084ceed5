package worker

import (
	"context"
	"log"

	"livepoll/internal/event"
	"livepoll/internal/metrics"
)

// StatsWorker drains committed vote events off the request path. It feeds
// the vote counters and, when a publisher is configured, forwards events
// to the analytics topic. Result broadcasts never go through here, so a
// slow broker cannot reorder subscriber-visible snapshots.
type StatsWorker struct {
	ch        <-chan event.VoteEvent
	publisher event.VotePublisher
}

func NewStatsWorker(ch <-chan event.VoteEvent, publisher event.VotePublisher) *StatsWorker {
	return &StatsWorker{ch: ch, publisher: publisher}
}

func (w *StatsWorker) Run(ctx context.Context) {
	log.Println("stats worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("stats worker stopped")
			return
		case ev := <-w.ch:
			metrics.IncVote(ev.Action)
			if w.publisher != nil {
				if err := w.publisher.Publish(ctx, ev); err != nil {
					log.Printf("publishing vote event: poll=%d option=%d: %v", ev.PollID, ev.OptionID, err)
				}
			}
		}
	}
}
