package reader

import (
	"context"
	"sync"
	"time"
)

// Mock is a programmatically driven reader for tests and hosts without
// reader hardware.  Inject queues a scan; Read consumes queued scans with
// the same timeout semantics as the hardware reader.
type Mock struct {
	scans chan Scan

	mu     sync.Mutex
	closed bool
}

func NewMock() *Mock {
	return &Mock{scans: make(chan Scan, 16)}
}

// Inject queues a scan as if a card had been tapped.  Scans injected after
// Close, or beyond the queue capacity, are dropped.
func (m *Mock) Inject(uid, payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.scans <- Scan{UID: uid, Payload: payload}:
	default:
	}
}

func (m *Mock) Read(ctx context.Context, timeout time.Duration) (*Scan, error) {
	if timeout == 0 {
		select {
		case s := <-m.scans:
			return &s, nil
		default:
			return nil, nil
		}
	}

	if timeout < 0 {
		select {
		case s := <-m.scans:
			return &s, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case s := <-m.scans:
		return &s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
		return nil, nil
	}
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
