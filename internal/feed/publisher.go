// Package feed streams newly stored events to a monitoring client. Each
// connected client gets its own Publisher with its own cursor; the cursor is
// client-local and not persisted, so a reconnecting client re-tails from the
// beginning. That is accepted behavior, not a bug.
package feed

import (
	"context"
	"time"

	"github.com/mjollne/varde/internal/database/models"
	"github.com/mjollne/varde/internal/util"
)

// TailReader is the slice of the store the publisher needs. A push-based store
// could satisfy it without touching any transport.
type TailReader interface {
	Tail(sinceID int64) ([]models.AttackEvent, error)
}

// SendFunc delivers one event to the client. Returning an error ends the loop.
type SendFunc func(event models.AttackEvent) error

// Publisher polls the store and pushes new events in strictly increasing id
// order: no duplicates, no gaps, assuming a single poller per client.
type Publisher struct {
	store    TailReader
	interval time.Duration
	backoff  time.Duration

	// OnIdle, if set, runs after each poll round that delivered nothing new.
	// Transports use it as a keepalive so a dead client is noticed even when
	// the store is quiet. Returning an error ends the loop.
	OnIdle func() error
}

// NewPublisher returns a publisher polling at the given interval. Store read
// failures (including a store that does not exist yet) back off to five times
// the interval instead of failing the client.
func NewPublisher(store TailReader, interval time.Duration) *Publisher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Publisher{
		store:    store,
		interval: interval,
		backoff:  5 * interval,
	}
}

// Run polls until the context is cancelled or send fails. Cancellation is
// observed at the next poll boundary; every exit path releases the timer and
// holds no store handle afterwards.
func (p *Publisher) Run(ctx context.Context, send SendFunc) error {
	var lastID int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait := p.interval
		events, err := p.store.Tail(lastID)
		if err != nil {
			util.PrintWarningf("feed tail failed: %v", err)
			wait = p.backoff
		} else {
			for _, event := range events {
				if err := send(event); err != nil {
					return err
				}
				lastID = event.ID
			}
			if len(events) == 0 && p.OnIdle != nil {
				if err := p.OnIdle(); err != nil {
					return err
				}
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
