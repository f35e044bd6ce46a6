// Package compose overlays a circular-clipped logo onto the center of a QR
// code image. Every failure mode degrades to the untouched QR image: a
// missing or broken logo must never cost the caller its QR code.
package compose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Default budget for fetching and decoding the logo image.
const DefaultTimeout = 8 * time.Second

// maxLogoBytes caps how much logo data is read from a remote source.
const maxLogoBytes = 8 << 20

const (
	// logoFraction is the logo square side as a fraction of the QR's
	// shorter dimension. A quarter stays within what EC level H can absorb.
	logoFraction = 0.25
	// discMargin is the white backing disc's extra radius beyond the logo.
	discMargin = 8.0
	// rimWidth is the stroke width of the light-gray rim around the disc.
	rimWidth = 2.0
)

// Logo identifies the image to overlay. Exactly one field is set: Data for
// an uploaded image, URL for a remote favicon.
type Logo struct {
	URL  string
	Data []byte
}

// Compositor merges logo images onto QR codes.
type Compositor struct {
	Client  *http.Client
	Timeout time.Duration
	Log     *slog.Logger
}

// New returns a Compositor with the default logo decode budget.
func New(timeout time.Duration, log *slog.Logger) *Compositor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Compositor{
		Client:  &http.Client{},
		Timeout: timeout,
		Log:     log,
	}
}

// Composite draws logo onto the center of qrPNG and returns the combined
// PNG plus true. On any failure — the logo cannot be fetched or decoded in
// time, or the QR itself does not decode — it returns qrPNG unchanged and
// false. It never returns an error.
func (c *Compositor) Composite(ctx context.Context, qrPNG []byte, logo Logo) ([]byte, bool) {
	qrImg, err := png.Decode(bytes.NewReader(qrPNG))
	if err != nil {
		c.Log.Warn("base QR did not decode, skipping logo", "error", err)
		return qrPNG, false
	}

	logoImg, err := c.loadLogo(ctx, logo)
	if err != nil {
		c.Log.Warn("logo unavailable, keeping plain QR", "error", err)
		return qrPNG, false
	}

	out, err := overlay(qrImg, logoImg)
	if err != nil {
		c.Log.Warn("logo compositing failed, keeping plain QR", "error", err)
		return qrPNG, false
	}
	return out, true
}

// loadLogo resolves the logo bytes (remote fetch bounded by the decode
// budget, or inline data) and decodes them into an image.
func (c *Compositor) loadLogo(ctx context.Context, logo Logo) (image.Image, error) {
	data := logo.Data
	contentType := ""
	if data == nil {
		if logo.URL == "" {
			return nil, fmt.Errorf("no logo source")
		}
		var err error
		data, contentType, err = c.fetch(ctx, logo.URL)
		if err != nil {
			return nil, err
		}
	}
	return decodeLogo(data, contentType)
}

func (c *Compositor) fetch(ctx context.Context, url string) ([]byte, string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building logo request: %w", err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetching logo: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading logo body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// overlay draws the logo clipped to a circle over a white backing disc at
// the QR's geometric center.
func overlay(qrImg, logoImg image.Image) ([]byte, error) {
	bounds := qrImg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty QR image")
	}

	shorter := w
	if h < shorter {
		shorter = h
	}
	side := int(float64(shorter) * logoFraction)
	if side < 1 {
		return nil, fmt.Errorf("QR too small for a logo overlay")
	}
	logoRadius := float64(side) / 2
	discRadius := logoRadius + discMargin
	cx, cy := float64(w)/2, float64(h)/2

	dc := gg.NewContext(w, h)
	dc.DrawImage(qrImg, 0, 0)

	// White backing disc with a thin light-gray rim.
	dc.DrawCircle(cx, cy, discRadius)
	dc.SetRGB255(255, 255, 255)
	dc.Fill()
	dc.DrawCircle(cx, cy, discRadius)
	dc.SetLineWidth(rimWidth)
	dc.SetRGB255(221, 221, 221)
	dc.Stroke()

	// Clip to the logo circle (no margin) and fill it with the scaled logo.
	scaled := scaleSquare(logoImg, side)
	dc.DrawCircle(cx, cy, logoRadius)
	dc.Clip()
	dc.DrawImage(scaled, int(cx-logoRadius), int(cy-logoRadius))
	dc.ResetClip()

	out := &bytes.Buffer{}
	if err := png.Encode(out, dc.Image()); err != nil {
		return nil, fmt.Errorf("encoding composite PNG: %w", err)
	}
	return out.Bytes(), nil
}

// scaleSquare resamples img to a side x side square.
func scaleSquare(img image.Image, side int) image.Image {
	b := img.Bounds()
	if b.Dx() == side && b.Dy() == side {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
