// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"

	"souffle/internal/account"
	"souffle/internal/config"
	"souffle/internal/domain/souffle"
	"souffle/internal/logger"
	"souffle/internal/moderation"
	"souffle/internal/server/handlers"
	"souffle/internal/service/location"
	ticketService "souffle/internal/service/ticket"
)

// Dependencies carries everything the HTTP layer needs.
type Dependencies struct {
	SouffleManager souffle.Manager
	TicketManager  *ticketService.Manager
	Moderation     *moderation.Engine
	Tracker        *location.Tracker
	Account        account.Account
	Violations     handlers.ViolationRecorder
	Stats          handlers.StatsSource
	Seeder         handlers.Seeder
	NATS           *nats.Conn
	Logger         logger.Logger
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	souffleHandler := handlers.NewSouffleHandler(
		deps.SouffleManager, deps.Moderation, deps.Tracker,
		deps.Account, deps.Violations, deps.Logger,
	)
	placeHandler := handlers.NewPlaceHandler(deps.SouffleManager)
	ticketHandler := handlers.NewTicketHandler(deps.TicketManager, deps.Tracker)
	locationHandler := handlers.NewLocationHandler(deps.Tracker, deps.Account, deps.Seeder)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Souffles API
			r.Route("/souffles", func(r chi.Router) {
				r.Get("/", souffleHandler.ListSouffles)
				r.Post("/", souffleHandler.CreateSouffle)
				r.Get("/revealed", souffleHandler.GetRevealed)
				r.Delete("/simulated", souffleHandler.ClearSimulated)
				r.Get("/{id}", souffleHandler.GetSouffle)
				r.Post("/{id}/reveal", souffleHandler.RevealSouffle)
				r.Post("/{id}/report", souffleHandler.ReportSouffle)
			})

			// Echo places API
			r.Get("/places", placeHandler.ListPlaces)

			// Suspended tickets API
			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", ticketHandler.ListTickets)
				r.Post("/", ticketHandler.PlaceTicket)
				r.Post("/{id}/claim", ticketHandler.ClaimTicket)
			})

			// Location and balances API
			r.Post("/location", locationHandler.UpdateLocation)
			r.Get("/account", locationHandler.GetBalances)

			// Moderation stats API
			if deps.Stats != nil {
				moderationHandler := handlers.NewModerationHandler(deps.Stats)
				r.Get("/moderation/stats", moderationHandler.GetStats)
			}
		})
	})

	// WebSocket endpoint for live map events
	if deps.NATS != nil {
		router.Get("/ws/map", handlers.MapWebSocketHandler(deps.NATS, "souffle.>", "ticket.>"))
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
