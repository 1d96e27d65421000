package events

import (
	"context"
	"time"

	"beecommerce/internal/log"
	"beecommerce/internal/repos"
)

// Publisher delivers one outbox payload.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload []byte) error
}

// Relay drains the outbox into a Publisher. Rows that fail to publish stay
// pending and are retried on the next tick.
type Relay struct {
	Outbox    *repos.OutboxRepo
	Publisher Publisher
	Interval  time.Duration
	Batch     int
}

func NewRelay(outbox *repos.OutboxRepo, pub Publisher, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{Outbox: outbox, Publisher: pub, Interval: interval, Batch: 100}
}

// Run ticks until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	t := time.NewTicker(r.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := r.Tick(ctx); err != nil && ctx.Err() == nil {
				log.Event("error", "outbox_relay", err, nil)
			}
		}
	}
}

// Tick publishes one batch in id order and returns how many were sent. It
// stops at the first failure so per-order ordering is kept.
func (r *Relay) Tick(ctx context.Context) (int, error) {
	recs, err := r.Outbox.FetchPending(ctx, r.Batch)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, rec := range recs {
		if err := r.Publisher.Publish(ctx, rec.Topic, rec.Key, []byte(rec.Payload)); err != nil {
			return sent, err
		}
		if err := r.Outbox.MarkSent(ctx, rec.ID); err != nil {
			return sent, err
		}
		sent++
	}
	if sent > 0 {
		log.Event("info", "outbox_published", nil, map[string]any{"count": sent})
	}
	return sent, nil
}
