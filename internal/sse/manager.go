package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/id"
)

// clientBuffer is the number of events queued per client before drops.
const clientBuffer = 64

// Client is a connected SSE client.
type Client struct {
	ID          string
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
}

// Manager tracks SSE clients and fans events out to them. Delivery never
// blocks the publisher: a client whose buffer is full misses the event.
type Manager struct {
	logger            *slog.Logger
	heartbeatInterval time.Duration

	mu       sync.RWMutex
	clients  map[string]*Client
	shutdown bool
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		logger:            logger,
		heartbeatInterval: 30 * time.Second,
		clients:           make(map[string]*Client),
	}
}

// HandleEvent forwards a committed settings event to every client. It has the
// bus handler signature.
func (m *Manager) HandleEvent(_ context.Context, e domain.Event) error {
	m.broadcast(NewSettingsEvent(e))
	return nil
}

func (m *Manager) broadcast(event Event) {
	var delivered, dropped int

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		select {
		case client.EventChan <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("dropped event for slow client",
				slog.String("client_id", client.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("event broadcast",
			slog.String("event_type", string(event.Type)),
			slog.Group("stats",
				slog.Int("delivered", delivered),
				slog.Int("dropped", dropped)))
	}
}

// Connect registers a new client.
func (m *Manager) Connect() (*Client, error) {
	clientID, err := id.Generate(id.PrefixClient)
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:          clientID,
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, clientBuffer),
		Done:        make(chan struct{}),
	}

	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		close(client.Done)
		return client, nil
	}
	m.clients[client.ID] = client
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.Int("total_clients", total))
	return client, nil
}

// Disconnect removes a client. Unknown ids are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.clients, clientID)
	total := len(m.clients)
	m.mu.Unlock()

	close(client.Done)

	m.logger.Info("SSE client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("duration", time.Since(client.ConnectedAt)),
		slog.Int("total_clients", total))
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// HeartbeatInterval returns how often handlers should send keepalives.
func (m *Manager) HeartbeatInterval() time.Duration {
	return m.heartbeatInterval
}

// Shutdown closes every client and refuses new ones.
func (m *Manager) Shutdown(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shutdown = true
	for _, client := range m.clients {
		close(client.Done)
	}
	m.clients = make(map[string]*Client)

	m.logger.Info("all SSE clients disconnected")
	return nil
}
