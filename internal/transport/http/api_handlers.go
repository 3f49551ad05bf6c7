package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const statsTimeout = 2 * time.Second

// APIHandlers provides the read-only HTTP endpoints.
type APIHandlers struct {
	hub SessionHub
	log *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub SessionHub, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub: hub,
		log: logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatsResponse represents the hub state in API responses.
type StatsResponse struct {
	Users            []string `json:"users"`
	Empty            bool     `json:"empty"`
	Sessions         int      `json:"sessions"`
	History          int      `json:"history"`
	HistoryCapacity  int      `json:"history_capacity"`
	Messages         uint64   `json:"messages"`
	SignalingEnabled bool     `json:"signaling_enabled"`
	ReadyPeers       int      `json:"ready_peers"`
}

// Health reports liveness.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Stats returns a snapshot of the room.
// GET /api/stats
func (h *APIHandlers) Stats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statsTimeout)
	defer cancel()

	st, err := h.hub.Stats(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to query hub stats")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}

	users := st.Users
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, StatsResponse{
		Users:            users,
		Empty:            st.Empty,
		Sessions:         st.Sessions,
		History:          st.History,
		HistoryCapacity:  st.HistoryCapacity,
		Messages:         st.Messages,
		SignalingEnabled: st.SignalingEnabled,
		ReadyPeers:       st.ReadyPeers,
	})
}
