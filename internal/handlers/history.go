package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkqr/linkqr/internal/generate"
	"github.com/linkqr/linkqr/internal/history"
)

// ListHistory returns the recent URLs, newest first.
//
//	GET /api/history
func (h *Handler) ListHistory(c *gin.Context) {
	entries := h.History.List()
	if entries == nil {
		entries = []history.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ClearHistory empties the history and removes its persisted record.
//
//	DELETE /api/history
func (h *Handler) ClearHistory(c *gin.Context) {
	if err := h.History.Clear(); err != nil {
		h.Log.Error("clearing history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"notice": generate.ErrorNotice("Could not clear the history.")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": []history.Entry{}})
}
