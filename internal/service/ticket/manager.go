// internal/service/ticket/manager.go

package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"souffle/internal/account"
	"souffle/internal/domain/geo"
	"souffle/internal/domain/ticket"
	"souffle/internal/logger"
)

// Store persists the suspended-ticket collection whole.
type Store interface {
	LoadTickets(ctx context.Context) ([]ticket.SuspendedTicket, error)
	SaveTickets(ctx context.Context, tickets []ticket.SuspendedTicket) error
}

// ManagerConfig contains configuration for the ticket manager
type ManagerConfig struct {
	EventsTopic   string
	SweepInterval time.Duration
}

// Manager owns the suspended-ticket collection. Placing pins a ticket to a
// location for 48 hours; claiming consumes it and credits the claimer's
// premium balance. Same write-through, in-memory-truth model as the souffle
// manager.
type Manager struct {
	store    Store
	account  account.Account
	eventBus *nats.Conn
	config   ManagerConfig
	log      logger.Logger

	mu      sync.Mutex
	tickets []ticket.SuspendedTicket

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a ticket manager
func NewManager(
	store Store,
	acct account.Account,
	eventBus *nats.Conn,
	log logger.Logger,
	config ManagerConfig,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		store:    store,
		account:  acct,
		eventBus: eventBus,
		config:   config,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}

	if config.SweepInterval > 0 {
		m.wg.Add(1)
		go m.runSweeper()
	}

	return m
}

// Load populates the manager from storage, dropping tickets that expired
// while the process was down.
func (m *Manager) Load(ctx context.Context) error {
	tickets, err := m.store.LoadTickets(ctx)
	if err != nil {
		return fmt.Errorf("error loading tickets: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tickets = ticket.SweepExpired(tickets, time.Now())
	m.persist(ctx)

	return nil
}

// Place pins a new ticket at the given location with the fixed 48h window.
func (m *Manager) Place(ctx context.Context, loc geo.Location) (*ticket.SuspendedTicket, error) {
	now := time.Now()
	t := ticket.SuspendedTicket{
		ID:        uuid.New().String(),
		Location:  loc,
		CreatedAt: now,
		ExpiresAt: now.Add(ticket.Lifetime),
	}

	m.mu.Lock()
	m.tickets = append(m.tickets, t)
	m.persist(ctx)
	m.mu.Unlock()

	m.publish("placed", map[string]any{
		"id":        t.ID,
		"latitude":  t.Location.Latitude,
		"longitude": t.Location.Longitude,
	})

	return &t, nil
}

// Claim consumes the ticket and credits one premium credit. Returns false
// when no matching unclaimed ticket exists, so a second claim of the same id
// never credits twice.
func (m *Manager) Claim(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()

	idx := -1
	now := time.Now()
	for i := range m.tickets {
		if m.tickets[i].ID == id && !m.tickets[i].IsClaimed && !m.tickets[i].Expired(now) {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return false, nil
	}

	m.tickets = append(m.tickets[:idx], m.tickets[idx+1:]...)
	m.persist(ctx)
	m.mu.Unlock()

	if err := m.account.AddPremiumCredit(ctx); err != nil {
		return false, fmt.Errorf("error crediting claimed ticket: %w", err)
	}

	m.publish("claimed", map[string]any{"id": id})
	return true, nil
}

// Active returns the non-expired tickets in insertion order
func (m *Manager) Active() []ticket.SuspendedTicket {
	m.mu.Lock()
	defer m.mu.Unlock()

	return ticket.SweepExpired(m.tickets, time.Now())
}

// Stop stops the background sweeper
func (m *Manager) Stop(ctx context.Context) error {
	m.cancel()

	c := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// persist writes the collection through to storage. Callers hold the mutex.
func (m *Manager) persist(ctx context.Context) {
	if err := m.store.SaveTickets(ctx, m.tickets); err != nil {
		m.log.Error("error persisting tickets", logger.Error(err))
	}
}

func (m *Manager) runSweeper() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	ctx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
	defer cancel()

	m.mu.Lock()
	alive := ticket.SweepExpired(m.tickets, time.Now())
	if len(alive) == len(m.tickets) {
		m.mu.Unlock()
		return
	}

	dropped := len(m.tickets) - len(alive)
	m.tickets = alive
	m.persist(ctx)
	m.mu.Unlock()

	m.log.Debug("swept expired tickets", logger.Int("dropped", dropped))
}

func (m *Manager) publish(eventType string, payload map[string]any) {
	if m.eventBus == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	topic := fmt.Sprintf("%s.%s", m.config.EventsTopic, eventType)
	if err := m.eventBus.Publish(topic, data); err != nil {
		m.log.Warn("error publishing ticket event",
			logger.String("topic", topic), logger.Error(err))
	}
}
