// Package notify delivers row-change events from Postgres NOTIFY to
// registered subscribers. Consumers use an event purely as a poke to
// re-fetch: no ordering or delivery guarantee is made, and a missed event is
// corrected by the next full fetch.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Channel is the NOTIFY channel raised by the row-change triggers.
const Channel = "record_changed"

// Event describes one row change. Payload is the table name the change
// happened in.
type Event struct {
	Payload string
}

type subscriber struct {
	id int
	fn func(Event)
}

// Listener holds a dedicated connection in LISTEN mode and fans every
// notification out to the current subscriber set.
type Listener struct {
	connString string

	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

func NewListener(connString string) *Listener {
	return &Listener{connString: connString}
}

// Subscribe registers fn for every future event and returns a function that
// removes the registration. Callbacks run on the listener goroutine and must
// not block.
func (l *Listener) Subscribe(fn func(Event)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscriber{id: id, fn: fn})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

func (l *Listener) dispatch(ev Event) {
	l.mu.Lock()
	subs := make([]subscriber, len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// Run listens until ctx is cancelled, reconnecting with backoff on
// connection loss.
func (l *Listener) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.Warn("change-feed connection lost, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("listening on %s: %w", Channel, err)
	}

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("waiting for notification: %w", err)
		}

		l.dispatch(Event{Payload: notification.Payload})
	}
}
