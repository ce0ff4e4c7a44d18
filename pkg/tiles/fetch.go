package tiles

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Fetcher downloads tiles from an XYZ endpoint, caching raw tile bytes on
// disk keyed by z/x/y.
type Fetcher struct {
	urlTemplate string
	cacheDir    string
	http        *http.Client
	limiter     *rate.Limiter
	workers     int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		f.http = hc
	}
}

// WithRateLimit caps requests per second toward the tile provider.
func WithRateLimit(rps int) Option {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}
}

// WithWorkers bounds concurrent tile downloads.
func WithWorkers(n int) Option {
	return func(f *Fetcher) {
		f.workers = n
	}
}

// NewFetcher creates a tile fetcher. The URL template uses {z}, {x}, and {y}
// placeholders.
func NewFetcher(urlTemplate, cacheDir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		urlTemplate: urlTemplate,
		cacheDir:    cacheDir,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(4, 4),
		workers: 4,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// TileKey identifies one tile within a zoom level.
type TileKey struct {
	X, Y int
}

// Fetch returns one decoded tile, from cache when available.
func (f *Fetcher) Fetch(ctx context.Context, x, y, zoom int) (image.Image, error) {
	data, err := f.fetchBytes(ctx, x, y, zoom)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "tiles: decode %d/%d/%d", zoom, x, y)
	}
	return img, nil
}

// FetchRange downloads every tile of a range, bounded by the worker and rate
// limits, and returns them keyed by tile index.
func (f *Fetcher) FetchRange(ctx context.Context, r Range) (map[TileKey]image.Image, error) {
	out := make(map[TileKey]image.Image, r.Count())
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for x := r.MinX; x <= r.MaxX; x++ {
		for y := r.MinY; y <= r.MaxY; y++ {
			x, y := x, y
			g.Go(func() error {
				img, err := f.Fetch(ctx, x, y, r.Zoom)
				if err != nil {
					return err
				}
				mu.Lock()
				out[TileKey{X: x, Y: y}] = img
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *Fetcher) fetchBytes(ctx context.Context, x, y, zoom int) ([]byte, error) {
	cachePath := filepath.Join(f.cacheDir, fmt.Sprint(zoom), fmt.Sprint(x), fmt.Sprintf("%d.bin", y))
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "tiles: rate limit wait")
	}

	url := strings.NewReplacer(
		"{z}", fmt.Sprint(zoom),
		"{x}", fmt.Sprint(x),
		"{y}", fmt.Sprint(y),
	).Replace(f.urlTemplate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "tiles: create request")
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "tiles: fetch %d/%d/%d", zoom, x, y)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("tiles: fetch %d/%d/%d: HTTP %d", zoom, x, y, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "tiles: read tile body")
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
		// Cache write failures are non-fatal; the tile is already in hand.
		_ = os.WriteFile(cachePath, data, 0o644)
	}
	return data, nil
}
