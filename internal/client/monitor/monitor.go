// Package monitor triggers sync passes on application state transitions.
// When the app comes back to the foreground after a stretch of offline use,
// pending local changes get one push attempt. No retries, no backoff: the
// next transition or explicit sync picks up whatever is left.
package monitor

import (
	"context"

	"github.com/georemind/georemind/internal/client/session"
	"github.com/georemind/georemind/internal/client/sync"
	"github.com/georemind/georemind/internal/logging"
)

// State is an application lifecycle state as reported by the host shell.
type State string

const (
	StateActive     State = "active"
	StateBackground State = "background"
)

// Monitor watches a state channel and syncs on every transition to active.
type Monitor struct {
	engine   *sync.Engine
	sessions *session.Manager
	log      logging.Logger
	states   <-chan State
}

// New constructs a monitor consuming states. The caller is expected to push
// an initial StateActive so startup behaves like a foreground transition.
func New(engine *sync.Engine, sessions *session.Manager, states <-chan State, log logging.Logger) *Monitor {
	if log == nil {
		log = logging.Nop()
	}
	return &Monitor{engine: engine, sessions: sessions, log: log, states: states}
}

// Run consumes state transitions until ctx is done or the channel closes.
// Each transition to active triggers at most one sync pass, and only when an
// authenticated session exists.
func (m *Monitor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-m.states:
			if !ok {
				return
			}
			if st != StateActive {
				continue
			}
			m.onActive(ctx)
		}
	}
}

func (m *Monitor) onActive(ctx context.Context) {
	sess := m.sessions.Current(ctx)
	if !sess.Authenticated() {
		m.log.Debug(ctx, "app active, no session, skipping sync")
		return
	}

	m.log.Debug(ctx, "app active, syncing", "user", sess.UserKey())
	res := m.engine.Sync(ctx, sess.UserKey())
	if res.Err != nil {
		m.log.Warn(ctx, "foreground sync failed", "user", sess.UserKey(), "error", res.Err)
	}
}
