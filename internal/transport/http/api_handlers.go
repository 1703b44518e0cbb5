package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/matchwire/internal/core"
	"github.com/vovakirdan/matchwire/internal/events"
	"github.com/vovakirdan/matchwire/internal/proto"
	"github.com/vovakirdan/matchwire/internal/store"
)

const (
	defaultMatchesLimit = 50
	maxMatchesLimit     = 500
)

// APIHandlers provides the read-only HTTP endpoints.
type APIHandlers struct {
	mm      *core.Matchmaker
	history store.MatchStore
	log     *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(mm *core.Matchmaker, history store.MatchStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		mm:      mm,
		history: history,
		log:     logger,
	}
}

// Health reports liveness.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Stats reports queue and session counters.
// GET /stats
func (h *APIHandlers) Stats(c *gin.Context) {
	stats, err := h.mm.Stats(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to read stats")
		c.JSON(http.StatusServiceUnavailable, proto.Error{Error: "matchmaker unavailable"})
		return
	}

	c.JSON(http.StatusOK, proto.Stats{
		Waiting:      stats.Waiting,
		Sessions:     stats.Sessions,
		MatchedTotal: stats.MatchedTotal,
	})
}

// Matches lists finished matches, newest first.
// GET /matches?limit=N&before=ID
func (h *APIHandlers) Matches(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, proto.Error{Error: "match history disabled"})
		return
	}

	limit := defaultMatchesLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, proto.Error{Error: "invalid limit"})
			return
		}
		limit = min(n, maxMatchesLimit)
	}

	var before *int64
	if raw := c.Query("before"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, proto.Error{Error: "invalid before"})
			return
		}
		before = &id
	}

	records, err := h.history.ListMatches(c.Request.Context(), limit, before)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list matches")
		c.JSON(http.StatusInternalServerError, proto.Error{Error: "internal server error"})
		return
	}

	out := make([]proto.Match, 0, len(records))
	for _, r := range records {
		out = append(out, events.RecordToProto(r))
	}
	c.JSON(http.StatusOK, out)
}
