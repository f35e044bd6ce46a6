package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linkqr/linkqr/internal/generate"
)

// maxUploadBytes caps the accepted logo file size.
const maxUploadBytes = 8 << 20

// UploadLogo accepts one image file for manual logo upload and returns the
// stored filename for use as the logoFile generation parameter.
//
//	POST /api/logo (multipart field "logo")
func (h *Handler) UploadLogo(c *gin.Context) {
	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"notice": generate.ErrorNotice("A logo file is required.")})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"notice": generate.ErrorNotice("The logo file is too large.")})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.Log.Error("opening uploaded logo", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"notice": generate.ErrorNotice("Could not read the uploaded file.")})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
	if err != nil {
		h.Log.Error("reading uploaded logo", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"notice": generate.ErrorNotice("Could not read the uploaded file.")})
		return
	}

	if !isImageUpload(fileHeader.Header.Get("Content-Type"), data) {
		c.JSON(http.StatusBadRequest, gin.H{"notice": generate.ErrorNotice("Only image files can be used as a logo.")})
		return
	}

	name := uuid.NewString() + uploadExtension(fileHeader.Filename)
	dst := filepath.Join(h.UploadDir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		h.Log.Error("storing uploaded logo", "path", dst, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"notice": generate.ErrorNotice("Could not store the uploaded file.")})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logo": name})
}

// isImageUpload accepts a file when either the declared or the sniffed
// content type is in the image category.
func isImageUpload(declared string, data []byte) bool {
	if strings.HasPrefix(declared, "image/") {
		return true
	}
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

// uploadExtension returns a safe file extension for the stored copy.
func uploadExtension(filename string) string {
	switch ext := strings.ToLower(filepath.Ext(filepath.Base(filename))); ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico":
		return ext
	default:
		return ".png"
	}
}
