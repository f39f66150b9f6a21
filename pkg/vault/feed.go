package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// NotifyChannel is the Postgres channel the files trigger notifies on.
const NotifyChannel = "files_changed"

// ChangeFeed calls fn once per change notification on the metadata table
// until ctx is done. Notifications carry no row data; listeners re-fetch.
type ChangeFeed interface {
	Listen(ctx context.Context, fn func()) error
}

// LocalFeed is an in-process ChangeFeed. Bursts of notifications may be
// coalesced into a single callback.
type LocalFeed struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: map[chan struct{}]struct{}{}}
}

// Notify signals every listener without blocking.
func (f *LocalFeed) Notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Listeners returns the number of active Listen calls.
func (f *LocalFeed) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *LocalFeed) Listen(ctx context.Context, fn func()) error {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		delete(f.subs, ch)
		f.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			fn()
		}
	}
}

// PGFeed listens on a dedicated Postgres connection. The trigger installed by
// the files_changed migration fires pg_notify on every insert, update or delete.
type PGFeed struct {
	dsn     string
	channel string
}

func NewPGFeed(dsn string) *PGFeed {
	return &PGFeed{dsn: dsn, channel: NotifyChannel}
}

func (f *PGFeed) Listen(ctx context.Context, fn func()) error {
	conn, err := pgx.Connect(ctx, f.dsn)
	if err != nil {
		return fmt.Errorf("connect change feed: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{f.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", f.channel, err)
	}
	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for %s: %w", f.channel, err)
		}
		fn()
	}
}
