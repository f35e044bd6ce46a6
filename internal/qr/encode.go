// Package qr encodes URLs as QR code PNG images.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"strings"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	xdraw "golang.org/x/image/draw"
)

// Sizes lists the supported output edge lengths in pixels.
var Sizes = []int{128, 256, 512, 1024}

// ValidSize reports whether size is one of the supported output sizes.
func ValidSize(size int) bool {
	for _, s := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// quietZoneModules is the number of QR modules left blank around the symbol.
const quietZoneModules = 2

// NormalizeURL validates and normalizes a URL string for QR generation.
// It ensures an http/https scheme, a non-empty hostname, and returns a
// cleaned absolute URL.
func NormalizeURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", fmt.Errorf("URL is required")
	}
	// If missing scheme, default to https
	schemeless := !strings.Contains(v, "://")
	if schemeless {
		v = "https://" + v
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL must include a valid host")
	}
	// A scheme-less input like "not-a-url" parses as a bare single-label
	// host once https:// is prefixed. Without an explicit scheme, only
	// dotted hostnames and localhost are plausible destinations.
	if schemeless && !strings.Contains(u.Hostname(), ".") && u.Hostname() != "localhost" {
		return "", fmt.Errorf("invalid URL: %q does not look like a web address", s)
	}
	// Optional: cap length to avoid abuse
	if len(v) > 4096 {
		return "", fmt.Errorf("URL is too long")
	}
	return u.String(), nil
}

// nopWriteCloser lets the standard writer emit into an in-memory buffer.
type nopWriteCloser struct {
	*bytes.Buffer
}

func (nopWriteCloser) Close() error { return nil }

// Encode renders targetURL as a size x size PNG QR code. Error correction is
// fixed at the highest level: a center logo destroys scannable area, so
// maximum redundancy is required to keep the code decodable.
func Encode(targetURL string, size int) ([]byte, error) {
	if !ValidSize(size) {
		return nil, fmt.Errorf("unsupported size %d (want one of %v)", size, Sizes)
	}

	qrc, err := qrcode.NewWith(targetURL,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest),
	)
	if err != nil {
		return nil, fmt.Errorf("creating QR code: %w", err)
	}

	// Pick a module width that lands the base render near the target size;
	// the final nearest-neighbor pass makes it exact.
	dimension := qrc.Dimension()
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid QR matrix dimension %d", dimension)
	}
	moduleSize := size / (dimension + 2*quietZoneModules)
	if moduleSize < 1 {
		moduleSize = 1
	}
	if moduleSize > 255 {
		moduleSize = 255
	}

	buf := &bytes.Buffer{}
	w := standard.NewWithWriter(nopWriteCloser{buf},
		standard.WithQRWidth(uint8(moduleSize)),
		standard.WithBorderWidth(moduleSize*quietZoneModules),
		standard.WithFgColor(color.RGBA{0, 0, 0, 255}),
		standard.WithBgColor(color.RGBA{255, 255, 255, 255}),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("rendering QR code: %w", err)
	}
	w.Close()

	return scaleToExact(buf.Bytes(), size)
}

// scaleToExact scales a PNG to exactly targetSize x targetSize using nearest
// neighbor, which preserves the sharp module edges of a QR code.
func scaleToExact(pngData []byte, targetSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decoding QR image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() == targetSize && bounds.Dy() == targetSize {
		return pngData, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)

	out := &bytes.Buffer{}
	if err := png.Encode(out, dst); err != nil {
		return nil, fmt.Errorf("encoding scaled PNG: %w", err)
	}
	return out.Bytes(), nil
}
