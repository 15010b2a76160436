package api

import (
	"net/http"
	"testing"

	"github.com/npezzotti/go-chessroom/internal/config"
	"github.com/npezzotti/go-chessroom/internal/database"
	"github.com/npezzotti/go-chessroom/internal/game"
	"github.com/npezzotti/go-chessroom/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewChessApp(t *testing.T) {
	mux := http.NewServeMux()
	logger := testutil.TestLogger(t)
	gs := &game.GameServer{}
	db := &database.MockChessRepository{}
	cfg := &config.Config{
		ServerAddr:     "localhost:8080",
		DatabaseDSN:    "dsn",
		SigningKey:     []byte("secret"),
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	app := NewChessApp(mux, logger, gs, db, nil, cfg)

	assert.NotNil(t, app, "expected app to be initialized")
	assert.NotNil(t, app.mux, "expected mux to be initialized")
	assert.NotNil(t, app.generateShortId, "expected id generator to be set")
	assert.Equal(t, app.log, logger, "expected logger to be set")
	assert.Equal(t, app.db, db, "expected db to be set")
	assert.Equal(t, app.gs, gs, "expected game server to be set")
	assert.Equal(t, app.signingKey, cfg.SigningKey, "expected signing key to be set")
	assert.Equal(t, app.allowedOrigins, cfg.AllowedOrigins, "expected allowed origins to be set")
	assert.Equal(t, app.mux.Addr, cfg.ServerAddr, "expected server address to match config")
}
