package liveview

import (
	"context"
	"errors"
	"sync"

	"adminpanel/models"
	"adminpanel/pkg/notify"

	"github.com/gorilla/websocket"
)

// State is the lifecycle of a View.
type State int

const (
	StateUnauthenticated State = iota
	StateRedirect
	StateLoading
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRedirect:
		return "redirect"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// View holds a locally cached record list kept current by the change feed.
// The cache is best effort: patches carry no sequence number, so Reload is
// the only way to reconcile after a missed or reordered event.
type View struct {
	client   *Client
	channel  string
	onChange func([]models.Record)

	mu    sync.Mutex
	state State
	items []models.Record
	err   error
	conn  *websocket.Conn
	done  chan struct{}
}

// NewView builds a view. onChange, if set, receives a copy of the list after
// every load or patch; it runs on the feed goroutine.
func NewView(c *Client, onChange func([]models.Record)) *View {
	return &View{client: c, channel: notify.StudentsChannel, onChange: onChange}
}

// Start loads the list and subscribes to the change feed. Without a token the
// view moves to StateRedirect and returns ErrUnauthenticated.
func (v *View) Start(ctx context.Context) error {
	if !v.client.Authenticated() {
		v.setState(StateRedirect)
		return ErrUnauthenticated
	}
	v.setState(StateLoading)
	if err := v.Reload(ctx); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			v.setState(StateRedirect)
		}
		return err
	}
	v.setState(StateReady)

	conn, err := v.client.Dial(ctx, v.channel)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	v.mu.Lock()
	if v.state == StateClosed {
		v.mu.Unlock()
		conn.Close()
		return nil
	}
	v.conn = conn
	v.done = done
	v.mu.Unlock()

	go v.readLoop(conn, done)
	return nil
}

// Reload replaces the cache with a full list from the API.
func (v *View) Reload(ctx context.Context) error {
	items, err := v.client.List(ctx)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.items = items
	snapshot := v.snapshotLocked()
	v.mu.Unlock()
	v.emit(snapshot)
	return nil
}

// Handle applies one envelope. Unknown events are ignored.
func (v *View) Handle(env notify.Envelope) {
	p, err := DecodePatch(env)
	if err != nil {
		return
	}
	v.mu.Lock()
	v.items = Apply(v.items, p)
	snapshot := v.snapshotLocked()
	v.mu.Unlock()
	v.emit(snapshot)
}

func (v *View) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			v.mu.Lock()
			if v.state != StateClosed {
				v.err = err
			}
			v.mu.Unlock()
			return
		}
		env, err := notify.DecodeEnvelope(msg)
		if err != nil || env.Channel != v.channel {
			continue
		}
		v.Handle(env)
	}
}

// Items returns a copy of the cached list.
func (v *View) Items() []models.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Done is closed when the change feed stops. It is nil before Start subscribes.
func (v *View) Done() <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.done
}

// Err reports why the change feed stopped, if it stopped on its own.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Delete asks the API to remove id. The cache changes only when the
// corresponding event arrives.
func (v *View) Delete(ctx context.Context, id string) error {
	_, err := v.client.Delete(ctx, id)
	return err
}

// Close unsubscribes and waits for the feed goroutine to exit.
func (v *View) Close() error {
	v.mu.Lock()
	v.state = StateClosed
	conn, done := v.conn, v.done
	v.conn = nil
	v.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline())
	err := conn.Close()
	<-done
	return err
}

func (v *View) setState(s State) {
	v.mu.Lock()
	if v.state != StateClosed {
		v.state = s
	}
	v.mu.Unlock()
}

func (v *View) snapshotLocked() []models.Record {
	out := make([]models.Record, len(v.items))
	copy(out, v.items)
	return out
}

func (v *View) emit(items []models.Record) {
	if v.onChange != nil {
		v.onChange(items)
	}
}
