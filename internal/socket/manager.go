package socket

import (
	"context"
	"sync"
)

// Manager owns the process-wide connection. It is constructed once at start
// and torn down at exit; screens receive it by injection.
type Manager struct {
	opts Options

	mu     sync.Mutex
	client *Client
}

func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Connect returns the current client while it is connected or reconnecting.
// A client that went down for good (reconnect off, attempts used up or a
// server disconnect) is discarded and a new one is dialed.
func (m *Manager) Connect(ctx context.Context) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		if m.client.active() {
			return m.client, nil
		}
		m.client.close()
		m.client = nil
	}
	client := newClient(m.opts)
	if err := client.connect(ctx); err != nil {
		client.close()
		return nil, err
	}
	m.client = client
	return client, nil
}

// Socket never dials; it is nil until Connect succeeds and after Disconnect.
func (m *Manager) Socket() *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}

// Disconnect closes the client and forgets it. No-op when already down.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()
	if client != nil {
		client.close()
	}
}
