package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkqr/linkqr/internal/compose"
	"github.com/linkqr/linkqr/internal/favicon"
	"github.com/linkqr/linkqr/internal/generate"
	"github.com/linkqr/linkqr/internal/history"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	log := slog.Default()

	resolver := &favicon.Resolver{
		Client:  &http.Client{},
		Timeout: 100 * time.Millisecond,
		Log:     log,
		// Unreachable: logo-less tests never probe, logo tests degrade.
		ServiceURLs: []string{"http://127.0.0.1:1/icon?host=%s"},
	}
	compositor := &compose.Compositor{
		Client:  &http.Client{},
		Timeout: 100 * time.Millisecond,
		Log:     log,
	}
	hist := history.NewStore(history.NewMemoryKV(), log)
	gen := generate.New(resolver, compositor, hist, log)

	h := New(gen, resolver, hist, log, t.TempDir())
	return NewRouter(h)
}

type generateResponse struct {
	Image    string          `json:"image"`
	UsedLogo bool            `json:"used_logo"`
	Filename string          `json:"filename"`
	Notice   generate.Notice `json:"notice"`
}

func doRequest(t *testing.T, r *gin.Engine, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateEndpoint_Success(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(t, r, http.MethodGet, "/api/generate?url=https://example.com&size=256", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Image, "data:image/png;base64,"))
	assert.False(t, resp.UsedLogo)
	assert.Equal(t, generate.LevelSuccess, resp.Notice.Level)
	assert.Contains(t, resp.Filename, "qr-code-")

	// The successful generation was recorded.
	w = doRequest(t, r, http.MethodGet, "/api/history", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		Entries []history.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Len(t, hist.Entries, 1)
	assert.Equal(t, "https://example.com", hist.Entries[0].URL)
}

func TestGenerateEndpoint_InvalidURL(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(t, r, http.MethodGet, "/api/generate?url=not%20a%20url", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Notice generate.Notice `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, generate.LevelError, resp.Notice.Level)

	// No history entry for failed generations.
	w = doRequest(t, r, http.MethodGet, "/api/history", nil, "")
	var hist struct {
		Entries []history.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	assert.Empty(t, hist.Entries)
}

func TestGenerateEndpoint_BadSize(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(t, r, http.MethodGet, "/api/generate?url=https://example.com&size=300", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEndpoint_Clear(t *testing.T) {
	r := newTestRouter(t)
	doRequest(t, r, http.MethodGet, "/api/generate?url=https://example.com", nil, "")

	w := doRequest(t, r, http.MethodDelete, "/api/history", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/history", nil, "")
	var hist struct {
		Entries []history.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	assert.Empty(t, hist.Entries)
}

func multipartLogo(t *testing.T, fieldFilename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="logo"; filename="`+fieldFilename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestUploadLogo_AcceptsImage(t *testing.T) {
	r := newTestRouter(t)
	body, ct := multipartLogo(t, "logo.png", "image/png", smallPNG(t))
	w := doRequest(t, r, http.MethodPost, "/api/logo", body, ct)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Logo string `json:"logo"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasSuffix(resp.Logo, ".png"))
}

func TestUploadLogo_AcceptsSVGByDeclaredType(t *testing.T) {
	// SVG sniffs as XML, so acceptance rides on the declared type alone.
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16"><rect width="16" height="16" fill="red"/></svg>`)
	r := newTestRouter(t)
	body, ct := multipartLogo(t, "logo.svg", "image/svg+xml", svg)
	w := doRequest(t, r, http.MethodPost, "/api/logo", body, ct)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Logo string `json:"logo"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasSuffix(resp.Logo, ".svg"))
}

func TestUploadLogo_RejectsNonImage(t *testing.T) {
	r := newTestRouter(t)
	body, ct := multipartLogo(t, "notes.txt", "text/plain", []byte("hello world, definitely text"))
	w := doRequest(t, r, http.MethodPost, "/api/logo", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadedLogoUsedInGeneration(t *testing.T) {
	r := newTestRouter(t)
	body, ct := multipartLogo(t, "logo.png", "image/png", smallPNG(t))
	w := doRequest(t, r, http.MethodPost, "/api/logo", body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	var up struct {
		Logo string `json:"logo"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))

	w = doRequest(t, r, http.MethodGet, "/api/generate?url=https://example.com&size=256&logo=true&logoFile="+up.Logo, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.UsedLogo)
	assert.Contains(t, resp.Filename, "with-logo")
}

func TestHomePage(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(t, r, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "linkqr")
}
