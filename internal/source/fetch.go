package source

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"go.uber.org/zap"
)

// currentCacheVersion defines the version of the cached body format.
const currentCacheVersion = 1

// maxBodyBytes bounds how much of a remote response is read.
const maxBodyBytes = 64 << 20

// ErrBodyTooLarge is returned when a remote response exceeds the body limit.
var ErrBodyTooLarge = errors.New("source body exceeds size limit")

// Fetcher loads the upstream table from a URL or a local file, caching remote bodies.
type Fetcher struct {
	location string
	client   *http.Client
	store    contract.CacheStore
	ttl      time.Duration
	maxBody  int64
	now      func() time.Time
}

var _ contract.RecordSource = &Fetcher{} // Compile-time check

// NewFetcher returns a Fetcher for location. A nil store disables caching.
func NewFetcher(location string, store contract.CacheStore, ttl time.Duration) *Fetcher {
	return &Fetcher{
		location: strings.TrimSpace(location),
		client:   &http.Client{Timeout: 60 * time.Second},
		store:    store,
		ttl:      ttl,
		maxBody:  maxBodyBytes,
		now:      time.Now,
	}
}

// Location returns the configured URL or path.
func (f *Fetcher) Location() string {
	return f.location
}

// Fetch reads and decodes the full table.
func (f *Fetcher) Fetch(ctx context.Context) ([]schema.RawRecord, error) {
	body, err := f.FetchBody(ctx)
	if err != nil {
		return nil, err
	}
	records, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.location, err)
	}
	return records, nil
}

// FetchBody returns the raw CSV bytes. Remote bodies younger than the TTL are served
// from the cache, and a stale cached body is used if the download fails.
func (f *Fetcher) FetchBody(ctx context.Context) ([]byte, error) {
	if f.location == "" {
		return nil, fmt.Errorf("empty source location")
	}
	if !isRemote(f.location) {
		path := strings.TrimPrefix(f.location, "file://")
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read source file: %w", err)
		}
		return body, nil
	}

	key := cacheKey(f.location)
	cached, fresh := f.checkCacheHit(key)
	if fresh {
		zap.L().Debug("source cache hit", zap.String("url", f.location))
		return cached, nil
	}

	body, err := f.download(ctx)
	if err != nil {
		if cached != nil {
			zap.L().Warn("download failed, using stale cached source", zap.String("url", f.location), zap.Error(err))
			return cached, nil
		}
		return nil, err
	}

	f.storeBody(key, body)
	return body, nil
}

// checkCacheHit returns the cached body, if any, and whether it is still fresh.
func (f *Fetcher) checkCacheHit(key string) ([]byte, bool) {
	if f.store == nil {
		return nil, false
	}
	data, version, ts, err := f.store.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil, false // Cache miss
	}
	body, err := snappy.Decode(nil, data)
	if err != nil {
		zap.L().Warn("discarding corrupt cached source", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return body, f.now().Sub(time.Unix(ts, 0)) <= f.ttl
}

// storeBody compresses and stores a freshly downloaded body.
func (f *Fetcher) storeBody(key string, body []byte) {
	if f.store == nil {
		return
	}
	if err := f.store.Set(key, snappy.Encode(nil, body), currentCacheVersion, f.now().Unix()); err != nil {
		zap.L().Warn("failed to cache source", zap.String("url", f.location), zap.Error(err))
	}
}

// download performs the HTTP GET.
func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.location, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := f.now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download source: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download source: http %d", resp.StatusCode)
	}
	// One extra byte distinguishes a body at the limit from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read source body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrBodyTooLarge, f.maxBody, f.location)
	}
	zap.L().Info("downloaded source",
		zap.String("url", f.location),
		zap.Int("bytes", len(body)),
		zap.Duration("took", f.now().Sub(start)))
	return body, nil
}

// isRemote reports whether location is an http(s) URL.
func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// cacheKey hashes the URL so keys have a fixed width.
func cacheKey(location string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte("source:"+location)))
}
