package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/linkqr/linkqr/internal/generate"
)

// defaultSize is used when the size parameter is absent, and is the
// preselected option on the page.
const defaultSize = 256

// GenerateQR runs a generation cycle from query parameters and returns the
// result as JSON with a data-URL image.
//
//	GET /api/generate?url=...&size=256&logo=true&logoFile=...&fromHistory=false
func (h *Handler) GenerateQR(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))

	size := defaultSize
	if v := c.Query("size"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"notice": generate.ErrorNotice("Size must be a number.")})
			return
		}
		size = parsed
	}

	req := generate.Request{
		URL:         rawURL,
		Size:        size,
		Logo:        c.Query("logo") == "true",
		FromHistory: c.Query("fromHistory") == "true",
	}
	if name := c.Query("logoFile"); name != "" {
		// Uploaded logos are referenced by bare filename only.
		req.LogoFile = filepath.Join(h.UploadDir, filepath.Base(name))
	}

	result, err := h.Generator.Generate(c.Request.Context(), req)
	if err != nil {
		var verr *generate.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"notice": generate.ErrorNotice(verr.Error())})
			return
		}
		h.Log.Error("generation failed", "url", rawURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"notice": generate.ErrorNotice("QR code generation failed.")})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DetectFavicon resolves the favicon for a URL so the UI can preview the
// detected logo before generating.
//
//	GET /api/favicon?url=...
func (h *Handler) DetectFavicon(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))
	res, err := h.Favicons.Resolve(c.Request.Context(), rawURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"notice": generate.ErrorNotice(err.Error())})
		return
	}
	c.JSON(http.StatusOK, res)
}
