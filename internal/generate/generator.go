// Package generate orchestrates a full QR generation cycle: validation,
// encoding, logo resolution, compositing and history recording.
package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/linkqr/linkqr/internal/compose"
	"github.com/linkqr/linkqr/internal/favicon"
	"github.com/linkqr/linkqr/internal/history"
	"github.com/linkqr/linkqr/internal/qr"
)

// Request describes one generation cycle.
type Request struct {
	URL  string
	Size int
	// Logo enables the center overlay. An uploaded LogoFile is preferred
	// over favicon auto-detection.
	Logo     bool
	LogoFile string
	// FromHistory marks regeneration triggered by selecting a history
	// entry; those do not re-record the URL.
	FromHistory bool
}

// Result carries the rendered image and how the logo step went.
type Result struct {
	PNG      []byte `json:"-"`
	DataURL  string `json:"image"`
	UsedLogo bool   `json:"used_logo"`
	Filename string `json:"filename"`
	Notice   Notice `json:"notice"`
}

// ValidationError marks user-correctable input problems, as opposed to
// hard generation failures.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// Compositor merges a logo into a rendered QR image. It reports whether
// the returned bytes include the logo; failures degrade, they never error.
type Compositor interface {
	Composite(ctx context.Context, qrPNG []byte, logo compose.Logo) ([]byte, bool)
}

// Generator wires the pipeline components together.
type Generator struct {
	Favicons   *favicon.Resolver
	Compositor Compositor
	History    *history.Store
	Log        *slog.Logger

	now func() time.Time
}

// New returns a Generator over the given components.
func New(favicons *favicon.Resolver, compositor Compositor, hist *history.Store, log *slog.Logger) *Generator {
	return &Generator{
		Favicons:   favicons,
		Compositor: compositor,
		History:    hist,
		Log:        log,
		now:        time.Now,
	}
}

// Generate runs one cycle. It returns a *ValidationError for bad input and
// a plain error for hard failures; logo problems never fail the call, they
// only downgrade the notice.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	normalized, err := qr.NormalizeURL(req.URL)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	if !qr.ValidSize(req.Size) {
		return nil, &ValidationError{Err: fmt.Errorf("unsupported size %d", req.Size)}
	}

	base, err := qr.Encode(normalized, req.Size)
	if err != nil {
		return nil, fmt.Errorf("encoding QR: %w", err)
	}

	result := &Result{PNG: base, Notice: successNotice()}
	if req.Logo {
		g.applyLogo(ctx, normalized, req.LogoFile, base, result)
	}

	result.DataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(result.PNG)
	result.Filename = DownloadFilename(result.UsedLogo, g.now())

	// Only direct submissions touch the history; regenerating from a
	// history entry must not reshuffle it.
	if !req.FromHistory && g.History != nil {
		if err := g.History.Add(normalized); err != nil {
			g.Log.Warn("recording history", "error", err)
		}
	}
	return result, nil
}

// applyLogo resolves a logo source and composites it onto base, updating
// result in place. All failure modes downgrade to a warning notice.
func (g *Generator) applyLogo(ctx context.Context, targetURL, logoFile string, base []byte, result *Result) {
	logo, ok := g.logoSource(ctx, targetURL, logoFile)
	if !ok {
		result.Notice = warningNotice("No logo could be found, generated a plain QR code.")
		return
	}

	out, used := g.Compositor.Composite(ctx, base, logo)
	if !used {
		result.Notice = warningNotice("The logo could not be applied, generated a plain QR code.")
		return
	}
	// A composite that is byte-identical to its input silently did
	// nothing; report it as not applied even though no error occurred.
	if bytes.Equal(out, base) {
		result.Notice = infoNotice("The logo was not applied to the QR code.")
		return
	}
	result.PNG = out
	result.UsedLogo = true
}

// logoSource picks the logo to use: an uploaded file when present and
// readable, otherwise the auto-detected favicon.
func (g *Generator) logoSource(ctx context.Context, targetURL, logoFile string) (compose.Logo, bool) {
	if logoFile != "" {
		data, err := os.ReadFile(logoFile)
		if err == nil {
			return compose.Logo{Data: data}, true
		}
		g.Log.Warn("uploaded logo unreadable, falling back to favicon", "file", logoFile, "error", err)
	}

	res, err := g.Favicons.Resolve(ctx, targetURL)
	if err != nil {
		g.Log.Warn("favicon resolution failed", "url", targetURL, "error", err)
		return compose.Logo{}, false
	}
	return compose.Logo{URL: res.URL}, true
}

// DownloadFilename names the saved PNG after the generation instant, with
// a marker when the logo made it into the image.
func DownloadFilename(usedLogo bool, ts time.Time) string {
	if usedLogo {
		return fmt.Sprintf("qr-code-with-logo-%d.png", ts.UnixMilli())
	}
	return fmt.Sprintf("qr-code-%d.png", ts.UnixMilli())
}
