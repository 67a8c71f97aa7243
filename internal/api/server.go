package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRecentLimit = 10

	banner = "<h2>🚀 Arbitrage Scanner Running...</h2><p>Visit /opportunities for live results</p>"
)

type OpportunityReader interface {
	GetRecentOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error)
}

type QuoteReader interface {
	GetLatestQuotes(ctx context.Context, symbol string) (map[string]models.PriceQuote, error)
}

type Option func(*Server)

func WithQuotes(quotes QuoteReader) Option {
	return func(s *Server) {
		s.quotes = quotes
	}
}

// WithStream mounts the live opportunity feed at /ws/opportunities.
func WithStream(stream http.Handler) Option {
	return func(s *Server) {
		s.stream = stream
	}
}

// WithHealth mounts h at /health and /ready.
func WithHealth(h http.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

func WithRecentLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.recentLimit = limit
		}
	}
}

// Server is the read-only HTTP view over stored opportunities.
type Server struct {
	store       OpportunityReader
	quotes      QuoteReader
	stream      http.Handler
	health      http.Handler
	recentLimit int
	logger      *logrus.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type quotesResponse struct {
	Symbol string                       `json:"symbol"`
	Quotes map[string]models.PriceQuote `json:"quotes"`
}

func NewServer(store OpportunityReader, logger *logrus.Logger, opts ...Option) *Server {
	s := &Server{
		store:       store,
		recentLimit: DefaultRecentLimit,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /opportunities", s.handleOpportunities)
	mux.HandleFunc("GET /prices/{symbol}", s.handlePrices)
	if s.stream != nil {
		mux.Handle("GET /ws/opportunities", s.stream)
	}
	if s.health != nil {
		mux.Handle("GET /health", s.health)
		mux.Handle("GET /ready", s.health) // Kubernetes readiness probe
	}
	return mux
}

func (s *Server) StartServer(port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		s.logger.WithField("port", port).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server failed")
		}
	}()

	return server
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(banner))
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opportunities, err := s.store.GetRecentOpportunities(ctx, s.recentLimit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load recent opportunities")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load opportunities"})
		return
	}

	writeJSON(w, http.StatusOK, models.NewOpportunityResponses(opportunities))
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if s.quotes == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "quote cache not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	symbol := r.PathValue("symbol")
	quotes, err := s.quotes.GetLatestQuotes(ctx, symbol)
	if err != nil {
		s.logger.WithError(err).WithField("symbol", symbol).Error("Failed to load latest quotes")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load quotes"})
		return
	}

	if len(quotes) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no recent quotes for " + symbol})
		return
	}

	writeJSON(w, http.StatusOK, quotesResponse{Symbol: symbol, Quotes: quotes})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
