// internal/service/ambient/generator.go

package ambient

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"souffle/internal/domain/geo"
	"souffle/internal/domain/souffle"
	"souffle/internal/logger"
)

// Creator is the slice of the souffle manager the generator needs.
type Creator interface {
	Create(ctx context.Context, params souffle.CreateParams) (*souffle.Souffle, error)
	Active() []souffle.Souffle
}

// LocationSource provides the position to scatter synthetic souffles around.
type LocationSource interface {
	Current() *geo.Location
}

// GeneratorConfig contains configuration for the ambient generator
type GeneratorConfig struct {
	Interval  time.Duration
	SeedCount int
}

// Generator periodically synthesizes filler souffles so the map never feels
// empty. Content comes from a fixed catalog, so creations bypass moderation.
// Synthesis runs from both the ticker loop and request goroutines (initial
// seeding), so the rand source is mutex-guarded.
type Generator struct {
	creator  Creator
	location LocationSource
	config   GeneratorConfig
	log      logger.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	seedMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGenerator creates an ambient generator. It does nothing until
// Activate is called.
func NewGenerator(creator Creator, location LocationSource, log logger.Logger, config GeneratorConfig) *Generator {
	if config.Interval <= 0 {
		config.Interval = 90 * time.Second
	}
	if config.SeedCount <= 0 {
		config.SeedCount = 20
	}

	return &Generator{
		creator:  creator,
		location: location,
		config:   config,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Activate starts the generation loop. Calling it while already active is a
// no-op.
func (g *Generator) Activate(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel

	g.wg.Add(1)
	go g.run(runCtx)

	g.log.Info("ambient generator activated")
}

// Deactivate stops the generation loop
func (g *Generator) Deactivate() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel == nil {
		return
	}
	g.cancel()
	g.cancel = nil
	g.wg.Wait()

	g.log.Info("ambient generator deactivated")
}

// SeedInitial populates an empty map with a batch of synthetic souffles
// around the given position. A non-empty collection is left alone. The seed
// mutex spans the emptiness check and the batch, so concurrent location
// updates produce exactly one batch.
func (g *Generator) SeedInitial(ctx context.Context, center geo.Location) {
	g.seedMu.Lock()
	defer g.seedMu.Unlock()

	if len(g.creator.Active()) > 0 {
		return
	}

	for i := 0; i < g.config.SeedCount; i++ {
		g.synthesize(ctx, center)
	}

	g.log.Info("seeded initial ambient souffles", logger.Int("count", g.config.SeedCount))
}

func (g *Generator) run(ctx context.Context) {
	defer g.wg.Done()

	ticker := time.NewTicker(g.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.tick(ctx)
		}
	}
}

// tick synthesizes one souffle when the preconditions hold: a known
// position and at least one existing souffle to resonate with.
func (g *Generator) tick(ctx context.Context) {
	loc := g.location.Current()
	if loc == nil {
		return
	}
	if len(g.creator.Active()) == 0 {
		return
	}

	g.synthesize(ctx, *loc)
}

func (g *Generator) synthesize(ctx context.Context, center geo.Location) {
	g.rngMu.Lock()
	duration := souffle.Duration24h
	if g.rng.Intn(2) == 0 {
		duration = souffle.Duration48h
	}
	content := souffle.Content{
		Feeling: ambientFeelings[g.rng.Intn(len(ambientFeelings))],
		Message: ambientMessages[g.rng.Intn(len(ambientMessages))],
	}
	loc := g.scatter(center)
	g.rngMu.Unlock()

	params := souffle.CreateParams{
		Content:   content,
		Location:  loc,
		Duration:  duration,
		Simulated: true,
	}

	if _, err := g.creator.Create(ctx, params); err != nil {
		g.log.Warn("error creating ambient souffle", logger.Error(err))
	}
}

// scatter picks a point at a random bearing, 50 to 550 meters from center.
// The flat-earth offset is fine at these distances. Callers hold rngMu.
func (g *Generator) scatter(center geo.Location) *geo.Location {
	bearing := g.rng.Float64() * 2 * math.Pi
	distance := 50 + g.rng.Float64()*500

	const metersPerDegree = 111_195
	dLat := distance * math.Cos(bearing) / metersPerDegree
	dLng := distance * math.Sin(bearing) / (metersPerDegree * math.Cos(center.Latitude*math.Pi/180))

	return &geo.Location{
		Latitude:  center.Latitude + dLat,
		Longitude: center.Longitude + dLng,
	}
}
