// Package favicon locates a site-identifying icon for a target URL by
// probing a fixed ordered list of well-known endpoints.
package favicon

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linkqr/linkqr/internal/qr"
)

// Default per-candidate probe timeout.
const DefaultTimeout = 3 * time.Second

// maxProbeBytes caps how much of a candidate body is read for verification.
const maxProbeBytes = 4 << 20

// defaultServiceURLs are printf templates taking the bare hostname. The
// first one doubles as the unconditional fallback when every probe fails.
var defaultServiceURLs = []string{
	"https://www.google.com/s2/favicons?domain=%s&sz=128",
	"https://www.google.com/s2/favicons?domain=%s&sz=64",
	"https://icons.duckduckgo.com/ip3/%s.ico",
}

// wellKnownPaths are probed on the target's own origin after the services.
var wellKnownPaths = []string{
	"/favicon.ico",
	"/favicon.png",
	"/apple-touch-icon.png",
}

// Resolution is the outcome of a favicon lookup. Verified is false when the
// URL is the "probably works" fallback that was never confirmed to load.
type Resolution struct {
	URL      string `json:"url"`
	Verified bool   `json:"verified"`
}

// Resolver probes favicon candidates strictly in order and returns the
// first that loads. No caching across calls, no retries.
type Resolver struct {
	Client      *http.Client
	Timeout     time.Duration
	Log         *slog.Logger
	ServiceURLs []string
}

// New returns a Resolver with the default candidate services.
func New(timeout time.Duration, log *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		Client:      &http.Client{},
		Timeout:     timeout,
		Log:         log,
		ServiceURLs: defaultServiceURLs,
	}
}

// Candidates builds the ordered probe list for target. The target must be a
// syntactically valid http(s) URL.
func (r *Resolver) Candidates(target string) ([]string, error) {
	normalized, err := qr.NormalizeURL(target)
	if err != nil {
		return nil, err
	}
	// NormalizeURL guarantees a parseable URL with scheme and host.
	u, err := url.Parse(normalized)
	if err != nil {
		return nil, err
	}
	host := u.Hostname()
	origin := u.Scheme + "://" + u.Host

	candidates := make([]string, 0, len(r.ServiceURLs)+len(wellKnownPaths))
	for _, tmpl := range r.ServiceURLs {
		candidates = append(candidates, fmt.Sprintf(tmpl, host))
	}
	for _, p := range wellKnownPaths {
		candidates = append(candidates, origin+p)
	}
	return candidates, nil
}

// Resolve probes the candidates in order and returns the first that loads
// as an image within the per-candidate timeout. When all candidates fail it
// returns the first service URL anyway with Verified=false: an unverified
// "probably works" fallback beats returning nothing. An invalid target URL
// is the only error case.
func (r *Resolver) Resolve(ctx context.Context, target string) (Resolution, error) {
	candidates, err := r.Candidates(target)
	if err != nil {
		return Resolution{}, err
	}

	for _, candidate := range candidates {
		if r.probe(ctx, candidate) {
			return Resolution{URL: candidate, Verified: true}, nil
		}
	}

	r.Log.Warn("no favicon candidate loaded, using fallback", "target", target, "fallback", candidates[0])
	return Resolution{URL: candidates[0], Verified: false}, nil
}

// probe reports whether candidate loads as an image within the timeout.
func (r *Resolver) probe(ctx context.Context, candidate string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, candidate, nil)
	if err != nil {
		return false
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBytes))
	if err != nil || len(body) == 0 {
		return false
	}
	return looksLikeImage(body, resp.Header.Get("Content-Type"))
}

// looksLikeImage accepts anything the standard decoders recognize, and
// falls back to the declared content type for formats like ICO and SVG
// that browsers render but image.DecodeConfig does not.
func looksLikeImage(body []byte, contentType string) bool {
	if _, _, err := image.DecodeConfig(bytes.NewReader(body)); err == nil {
		return true
	}
	return strings.HasPrefix(contentType, "image/")
}
