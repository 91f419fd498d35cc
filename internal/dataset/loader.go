// Package dataset loads the optional land polygon collection.
package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"
)

const fetchTimeout = 30 * time.Second

// Store holds the polygon collection once loading settles. A nil collection
// is a valid terminal state meaning the land layer is omitted.
type Store struct {
	mu sync.RWMutex
	fc *geojson.FeatureCollection
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set installs the loaded collection.
func (s *Store) Set(fc *geojson.FeatureCollection) {
	s.mu.Lock()
	s.fc = fc
	s.mu.Unlock()
}

// Get returns the collection, or nil when no land layer is available.
func (s *Store) Get() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fc
}

// LoadAsync fetches the dataset in the background. A failed load leaves the
// store empty for the rest of the session; there is no retry.
func (s *Store) LoadAsync(ctx context.Context, source string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		fc, err := Fetch(ctx, source)
		if err != nil {
			logger.Warn("dataset unavailable, land layer omitted",
				zap.String("source", source), zap.Error(err))
			return
		}
		s.Set(fc)
		logger.Info("dataset loaded",
			zap.String("source", source), zap.Int("features", len(fc.Features)))
	}()
}

// Fetch reads a GeoJSON feature collection from a local path or an
// http(s) URL and rejects empty collections.
func Fetch(ctx context.Context, source string) (*geojson.FeatureCollection, error) {
	if source == "" {
		return nil, fmt.Errorf("no dataset source configured")
	}

	var (
		raw []byte
		err error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		raw, err = fetchURL(ctx, source)
	} else {
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("dataset %s has no features", source)
	}
	return fc, nil
}

// fetchURL downloads the dataset body over HTTP.
func fetchURL(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
