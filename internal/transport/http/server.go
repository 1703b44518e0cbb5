package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/matchwire/internal/config"
	"github.com/vovakirdan/matchwire/internal/core"
	"github.com/vovakirdan/matchwire/internal/store"
)

// NewServer builds an HTTP server with the relay endpoint and read-only
// status routes. history may be nil when match history is disabled.
func NewServer(mm *core.Matchmaker, history store.MatchStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(mm, history, logger)
	router.GET("/health", api.Health)
	router.GET("/stats", api.Stats)
	router.GET("/matches", api.Matches)

	ws := NewWSHandler(mm, WSOptions{
		MaxMessageBytes: cfg.MaxMessageBytes,
		SendBuffer:      cfg.SendBuffer,
		WriteTimeout:    cfg.WriteTimeout,
	}, logger)

	// The upgrade hijacks the connection, which gin refuses once it has
	// written a status, so /ws bypasses the router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", ws)
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
