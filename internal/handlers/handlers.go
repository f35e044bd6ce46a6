// Package handlers exposes the QR generation pipeline over HTTP.
package handlers

import (
	"log/slog"

	"github.com/linkqr/linkqr/internal/favicon"
	"github.com/linkqr/linkqr/internal/generate"
	"github.com/linkqr/linkqr/internal/history"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	Generator *generate.Generator
	Favicons  *favicon.Resolver
	History   *history.Store
	Log       *slog.Logger
	UploadDir string
}

// New returns a Handler over the given components.
func New(gen *generate.Generator, favicons *favicon.Resolver, hist *history.Store, log *slog.Logger, uploadDir string) *Handler {
	return &Handler{
		Generator: gen,
		Favicons:  favicons,
		History:   hist,
		Log:       log,
		UploadDir: uploadDir,
	}
}
