package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/npezzotti/go-chessroom/internal/config"
	"github.com/npezzotti/go-chessroom/internal/database"
	"github.com/npezzotti/go-chessroom/internal/game"
	"github.com/npezzotti/go-chessroom/internal/stats"
	"github.com/teris-io/shortid"
)

type ChessApp struct {
	log             *log.Logger
	db              database.ChessRepository
	mux             *http.Server
	gs              *game.GameServer
	stats           stats.StatsProvider
	signingKey      []byte
	allowedOrigins  []string
	generateShortId func() (string, error)
}

func NewChessApp(mux *http.ServeMux, logger *log.Logger, gs *game.GameServer, db database.ChessRepository, sp stats.StatsProvider, cfg *config.Config) *ChessApp {
	s := &ChessApp{
		log:             logger,
		db:              db,
		gs:              gs,
		stats:           sp,
		signingKey:      cfg.SigningKey,
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("/api/account", s.authMiddleware(s.account))
	mux.Handle("POST /api/rooms", s.authMiddleware(s.createRoom))
	mux.HandleFunc("GET /api/rooms", s.getRoom)
	mux.HandleFunc("GET /api/lobby", s.lobby)
	mux.Handle("GET /ws", s.optionalAuthMiddleware(s.serveWs))
	mux.HandleFunc("GET /healthz", s.healthCheck)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *ChessApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *ChessApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
