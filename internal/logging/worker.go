package logging

import (
	"context"
	"sync/atomic"
	"time"
)

// writeErrorBackoff is how long a worker pauses after a sink failure before
// pulling the next event, so a broken sink cannot spin the loop.
const writeErrorBackoff = 100 * time.Millisecond

// runWorker drains one queue until cancelled. After the shutdown signal it
// keeps consuming whatever is still queued; Stop bounds that drain window by
// cancelling the context.
func (m *Manager) runWorker(ctx context.Context, queue <-chan *Event, pending *atomic.Int64) {
	defer m.wg.Done()
	for {
		select {
		case ev := <-queue:
			m.consume(ctx, ev, pending)
		case <-m.shutdown:
			for {
				select {
				case ev := <-queue:
					m.consume(ctx, ev, pending)
				case <-ctx.Done():
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) consume(ctx context.Context, ev *Event, pending *atomic.Int64) {
	err := m.writeEvent(ev)
	if pending != nil {
		pending.Add(-1)
	}
	if err != nil {
		m.reportf("write log event: %v", err)
		select {
		case <-ctx.Done():
		case <-time.After(writeErrorBackoff):
		}
	}
}

// writeEvent formats the event once and emits it to every enabled sink. The
// file write happens under the handle mutex so it can never interleave with
// a rotation.
func (m *Manager) writeEvent(ev *Event) error {
	line := m.render(ev)

	m.mu.Lock()
	if m.file != nil {
		if _, err := m.file.WriteString(line + "\n"); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	m.mu.Unlock()

	m.writeConsole(line)
	return nil
}
