package handlers

import "github.com/gin-gonic/gin"

// NewRouter returns a fully configured gin engine with all routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/generate", h.GenerateQR)
		api.GET("/favicon", h.DetectFavicon)
		api.POST("/logo", h.UploadLogo)
		api.GET("/history", h.ListHistory)
		api.DELETE("/history", h.ClearHistory)
	}

	r.GET("/", h.HomePage)
	return r
}
