// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/racecard/internal/domain/model"
)

const defaultMaxBodyBytes = 4 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Analyze parses and ranks a card synchronously.
	Analyze(ctx context.Context, text string, condition model.TrackCondition) (model.CardAnalysis, error)

	// Submit queues a card and returns its content id.
	Submit(ctx context.Context, text string, condition model.TrackCondition) (id string, duplicate bool, err error)

	// Card and Rescore expose stored analyses.
	Card(ctx context.Context, id string) (model.CardAnalysis, error)
	Rescore(ctx context.Context, id string, condition model.TrackCondition) (model.CardAnalysis, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	rankHandler       *RankHandler
	cardsHandler      *CardsHandler
	conditionsHandler *ConditionsHandler
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxBodyBytes int64
}

// WithMaxBodyBytes caps card upload bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		rankHandler:       NewRankHandler(deps, cfg.maxBodyBytes),
		cardsHandler:      NewCardsHandler(deps, cfg.maxBodyBytes),
		conditionsHandler: NewConditionsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /conditions", MetricsMiddleware(s.conditionsHandler.HandleList, "conditions"))
	mux.HandleFunc("POST /rank", MetricsMiddleware(s.rankHandler.HandleRank, "rank"))
	mux.HandleFunc("POST /cards", MetricsMiddleware(s.cardsHandler.HandleSubmit, "cards_submit"))
	mux.HandleFunc("GET /cards/{id}", MetricsMiddleware(s.cardsHandler.HandleGet, "cards_get"))
	mux.HandleFunc("POST /cards/{id}/score", MetricsMiddleware(s.cardsHandler.HandleRescore, "cards_rescore"))
}

type ackResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
