package compose

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// svgRasterSize is the render size for SVG logos without a usable viewBox.
const svgRasterSize = 256

// decodeLogo decodes raster logo data with the standard decoders, falling
// back to SVG rasterization for vector favicons.
func decodeLogo(data []byte, contentType string) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if strings.Contains(contentType, "svg") || looksLikeSVG(data) {
		return rasterizeSVG(data)
	}
	return nil, fmt.Errorf("unsupported logo image format (content type %q)", contentType)
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}

// rasterizeSVG renders SVG data to an RGBA image at its declared viewBox
// size, or svgRasterSize when the viewBox is missing or degenerate.
func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing SVG logo: %w", err)
	}

	w := int(icon.ViewBox.W)
	h := int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		w, h = svgRasterSize, svgRasterSize
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return rgba, nil
}
