// internal/service/souffle/manager.go

package souffle

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"souffle/internal/domain/place"
	"souffle/internal/domain/souffle"
	"souffle/internal/logger"
	placeService "souffle/internal/service/place"
)

// Store is the persistence collaborator for the collections this manager
// owns: the souffles themselves, the echo-place display cache, and the
// revealed-id history. Each is loaded and saved whole.
type Store interface {
	LoadSouffles(ctx context.Context) ([]souffle.Souffle, error)
	SaveSouffles(ctx context.Context, souffles []souffle.Souffle) error
	SavePlaces(ctx context.Context, places []place.EchoPlace) error
	LoadRevealed(ctx context.Context) ([]string, error)
	SaveRevealed(ctx context.Context, ids []string) error
}

// ReportArchive records community-reported souffles durably before they
// vanish from the ephemeral store.
type ReportArchive interface {
	RecordReport(ctx context.Context, s souffle.Souffle) error
}

// ManagerConfig contains configuration for the souffle manager
type ManagerConfig struct {
	EventsTopic   string
	SweepInterval time.Duration
}

// Manager implements the souffle.Manager interface. The in-memory
// collection is the source of truth for the session; storage is
// write-through and best-effort. Each mutating operation holds the mutex
// across the mutation, the echo-place recompute and the persistence write,
// so the clustering never observes a half-updated collection.
type Manager struct {
	store   Store
	archive ReportArchive

	eventBus *nats.Conn
	config   ManagerConfig
	log      logger.Logger

	mu       sync.Mutex
	souffles []souffle.Souffle
	places   []place.EchoPlace
	revealed []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a souffle manager. The archive may be nil; reports are
// then not archived. A background sweeper physically drops expired souffles
// on the configured interval.
func NewManager(
	store Store,
	archive ReportArchive,
	eventBus *nats.Conn,
	log logger.Logger,
	config ManagerConfig,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		store:    store,
		archive:  archive,
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

// Load populates the manager from storage, sweeping anything that expired
// while the process was down.
func (m *Manager) Load(ctx context.Context) error {
	souffles, err := m.store.LoadSouffles(ctx)
	if err != nil {
		return fmt.Errorf("error loading souffles: %w", err)
	}

	revealed, err := m.store.LoadRevealed(ctx)
	if err != nil {
		return fmt.Errorf("error loading revealed history: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.souffles = souffle.SweepExpired(souffles, time.Now())
	m.revealed = revealed
	m.recompute()
	m.persist(ctx, true)

	return nil
}

// Create appends a new souffle to the collection
func (m *Manager) Create(ctx context.Context, params souffle.CreateParams) (*souffle.Souffle, error) {
	if params.Location == nil {
		return nil, souffle.ErrNoLocation
	}
	if !params.Duration.Valid() {
		return nil, souffle.ErrInvalidDuration
	}

	now := time.Now()
	s := souffle.Souffle{
		ID:           uuid.New().String(),
		Content:      params.Content,
		Location:     *params.Location,
		CreatedAt:    now,
		ExpiresAt:    now.Add(params.Duration.Hours()),
		IsSimulated:  params.Simulated,
		StickerID:    params.StickerID,
		BackgroundID: params.BackgroundID,
	}

	m.mu.Lock()
	m.souffles = append(m.souffles, s)
	m.recompute()
	m.persist(ctx, true)
	m.mu.Unlock()

	m.publish("created", map[string]any{
		"id":        s.ID,
		"latitude":  s.Location.Latitude,
		"longitude": s.Location.Longitude,
		"simulated": s.IsSimulated,
	})

	return &s, nil
}

// Get returns a souffle from the active set by id
func (m *Manager) Get(id string) (souffle.Souffle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, s := range m.souffles {
		if s.ID == id && !s.Expired(now) {
			return s, true
		}
	}
	return souffle.Souffle{}, false
}

// Active returns the non-expired souffles in insertion order
func (m *Manager) Active() []souffle.Souffle {
	m.mu.Lock()
	defer m.mu.Unlock()

	return souffle.SweepExpired(m.souffles, time.Now())
}

// Reveal flips the reveal flags and records the id in the revealed history.
// Echo-place membership depends on existence, not reveal state, so no
// recompute happens here.
func (m *Manager) Reveal(ctx context.Context, id string) error {
	m.mu.Lock()

	idx := -1
	for i := range m.souffles {
		if m.souffles[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}

	m.souffles[idx].IsRevealed = true
	m.souffles[idx].HasBeenRead = true

	if !contains(m.revealed, id) {
		m.revealed = append(m.revealed, id)
	}

	m.persist(ctx, false)
	m.mu.Unlock()

	m.publish("revealed", map[string]any{"id": id})
	return nil
}

// Report removes the souffle from the active collection entirely; this is
// the moderation-by-community path.
func (m *Manager) Report(ctx context.Context, id string) error {
	m.mu.Lock()

	idx := -1
	for i := range m.souffles {
		if m.souffles[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}

	reported := m.souffles[idx]
	reported.ReportCount++

	m.souffles = append(m.souffles[:idx], m.souffles[idx+1:]...)
	m.recompute()
	m.persist(ctx, true)
	m.mu.Unlock()

	if m.archive != nil {
		if err := m.archive.RecordReport(ctx, reported); err != nil {
			m.log.Error("error archiving reported souffle",
				logger.String("souffle_id", id), logger.Error(err))
		}
	}

	m.publish("reported", map[string]any{"id": id})
	return nil
}

// ClearSimulated removes every synthetic souffle, keeping user-authored ones
func (m *Manager) ClearSimulated(ctx context.Context) error {
	m.mu.Lock()

	kept := make([]souffle.Souffle, 0, len(m.souffles))
	for _, s := range m.souffles {
		if !s.IsSimulated {
			kept = append(kept, s)
		}
	}

	removed := len(m.souffles) - len(kept)
	if removed == 0 {
		m.mu.Unlock()
		return nil
	}

	m.souffles = kept
	m.recompute()
	m.persist(ctx, true)
	m.mu.Unlock()

	m.publish("cleared", map[string]any{"removed": removed})
	return nil
}

// Places returns the current derived echo places
func (m *Manager) Places() []place.EchoPlace {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]place.EchoPlace, len(m.places))
	copy(out, m.places)
	return out
}

// RevealedIDs returns the revealed-souffle-id history
func (m *Manager) RevealedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.revealed))
	copy(out, m.revealed)
	return out
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

// recompute re-derives the echo places from the active souffles. Callers
// hold the mutex. Expired souffles are excluded from clustering even before
// the sweeper physically drops them.
func (m *Manager) recompute() {
	m.places = placeService.Compute(souffle.SweepExpired(m.souffles, time.Now()))
}

// persist writes the collections through to storage. Callers hold the
// mutex. Failures are logged and swallowed: the in-memory state is the
// source of truth for the session and must not be rolled back.
func (m *Manager) persist(ctx context.Context, withPlaces bool) {
	if err := m.store.SaveSouffles(ctx, m.souffles); err != nil {
		m.log.Error("error persisting souffles", logger.Error(err))
	}
	if err := m.store.SaveRevealed(ctx, m.revealed); err != nil {
		m.log.Error("error persisting revealed history", logger.Error(err))
	}
	if withPlaces {
		if err := m.store.SavePlaces(ctx, m.places); err != nil {
			m.log.Error("error persisting echo places", logger.Error(err))
		}
	}
}

// runSweeper periodically drops expired souffles from the physical
// collection. Between sweeps they are already invisible to every active
// view; this is only the deferred deletion write cycle.
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
	alive := souffle.SweepExpired(m.souffles, time.Now())
	if len(alive) == len(m.souffles) {
		m.mu.Unlock()
		return
	}

	dropped := len(m.souffles) - len(alive)
	m.souffles = alive
	m.recompute()
	m.persist(ctx, true)
	m.mu.Unlock()

	m.log.Debug("swept expired souffles", logger.Int("dropped", dropped))
}

// publish emits a domain event on the event bus, best-effort.
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
		m.log.Warn("error publishing souffle event",
			logger.String("topic", topic), logger.Error(err))
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
