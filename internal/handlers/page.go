package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkqr/linkqr/internal/qr"
	"github.com/linkqr/linkqr/web/components"
)

// HomePage serves the single-page UI.
func (h *Handler) HomePage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := components.Page(qr.Sizes, defaultSize).Render(c.Request.Context(), c.Writer); err != nil {
		h.Log.Error("rendering page", "error", err)
	}
}
