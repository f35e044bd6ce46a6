package compose

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQR builds a checkerboard PNG standing in for a real QR code.
func fakeQR(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/8+y/8)%2 == 0 {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func redLogo(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func newTestCompositor(timeout time.Duration) *Compositor {
	return &Compositor{Client: &http.Client{}, Timeout: timeout, Log: slog.Default()}
}

func TestComposite_UploadedLogoChangesImage(t *testing.T) {
	c := newTestCompositor(time.Second)
	qr := fakeQR(t, 256)

	out, used := c.Composite(context.Background(), qr, Logo{Data: redLogo(t, 64)})
	assert.True(t, used)
	assert.NotEqual(t, qr, out)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())

	// Center pixel must now be the logo color, not the checkerboard.
	r, g, b, _ := img.At(128, 128).RGBA()
	assert.Greater(t, r>>8, uint32(150))
	assert.Less(t, g>>8, uint32(100))
	assert.Less(t, b>>8, uint32(100))
}

func TestComposite_WhiteDiscAroundLogo(t *testing.T) {
	c := newTestCompositor(time.Second)
	out, used := c.Composite(context.Background(), fakeQR(t, 256), Logo{Data: redLogo(t, 64)})
	require.True(t, used)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	// Logo radius is 32 (25% of 256 / 2); the backing disc extends 8px
	// beyond it. A point between the two rings must be white.
	r, g, b, _ := img.At(128+36, 128).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestComposite_RemoteLogo(t *testing.T) {
	logo := redLogo(t, 48)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(logo)
	}))
	defer srv.Close()

	c := newTestCompositor(time.Second)
	qr := fakeQR(t, 256)
	out, used := c.Composite(context.Background(), qr, Logo{URL: srv.URL + "/logo.png"})
	assert.True(t, used)
	assert.NotEqual(t, qr, out)
}

func TestComposite_FetchFailureReturnsInputUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newTestCompositor(time.Second)
	qr := fakeQR(t, 256)
	out, used := c.Composite(context.Background(), qr, Logo{URL: srv.URL + "/logo.png"})
	assert.False(t, used)
	assert.Equal(t, qr, out)
}

func TestComposite_SlowLogoTimesOut(t *testing.T) {
	logo := redLogo(t, 48)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(400 * time.Millisecond)
		w.Write(logo)
	}))
	defer srv.Close()

	c := newTestCompositor(50 * time.Millisecond)
	qr := fakeQR(t, 256)
	out, used := c.Composite(context.Background(), qr, Logo{URL: srv.URL + "/logo.png"})
	assert.False(t, used)
	assert.Equal(t, qr, out)
}

func TestComposite_UndecodableLogoReturnsInputUnchanged(t *testing.T) {
	c := newTestCompositor(time.Second)
	qr := fakeQR(t, 256)
	out, used := c.Composite(context.Background(), qr, Logo{Data: []byte("definitely not an image")})
	assert.False(t, used)
	assert.Equal(t, qr, out)
}

func TestComposite_CorruptBaseQRReturnsInputUnchanged(t *testing.T) {
	c := newTestCompositor(time.Second)
	in := []byte("not a png")
	out, used := c.Composite(context.Background(), in, Logo{Data: redLogo(t, 16)})
	assert.False(t, used)
	assert.Equal(t, in, out)
}

func TestDecodeLogo_SVG(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32"><circle cx="16" cy="16" r="16" fill="#3b82f6"/></svg>`)
	img, err := decodeLogo(svg, "image/svg+xml")
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestDecodeLogo_SVGWithoutContentType(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)
	_, err := decodeLogo(svg, "")
	require.NoError(t, err)
}

func TestDecodeLogo_Unsupported(t *testing.T) {
	_, err := decodeLogo([]byte("plain text"), "text/plain")
	assert.Error(t, err)
}
