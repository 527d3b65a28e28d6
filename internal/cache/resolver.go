// Package cache resolves remote media URIs to local copies.
//
// Lookups never block playback for long and never fail it: Fallback turns
// every miss, error or timeout into the remote URI.
package cache

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/reels/internal/telemetry"
)

// ErrMiss is returned when a URI is not cached.
var ErrMiss = errors.New("not cached")

// DefaultTimeout bounds a lookup made on behalf of the playback loop.
const DefaultTimeout = 100 * time.Millisecond

// Resolver maps a remote URI to a playable one.
type Resolver interface {
	ResolvePlayableURI(ctx context.Context, remote string) (string, error)
}

// IsStream reports whether uri is an HLS playlist. Playlists are streamed
// segment by segment and never cached as a whole.
func IsStream(uri string) bool {
	p := uri
	if u, err := url.Parse(uri); err == nil {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".m3u8")
}

// Memory is an in-process Resolver. It fronts the persistent index so the
// hot path does not touch the database.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
	next    Resolver
}

// NewMemory creates an in-memory layer over next. next may be nil.
func NewMemory(next Resolver) *Memory {
	return &Memory{entries: make(map[string]string), next: next}
}

// Store remembers that remote is playable at local.
func (m *Memory) Store(remote, local string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[remote] = local
}

// Forget drops remote.
func (m *Memory) Forget(remote string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, remote)
}

// ResolvePlayableURI implements Resolver.
func (m *Memory) ResolvePlayableURI(ctx context.Context, remote string) (string, error) {
	m.mu.RLock()
	local, ok := m.entries[remote]
	m.mu.RUnlock()
	if ok {
		return local, nil
	}
	if m.next == nil {
		return "", ErrMiss
	}
	local, err := m.next.ResolvePlayableURI(ctx, remote)
	if err != nil {
		return "", err
	}
	m.Store(remote, local)
	return local, nil
}

// Fallback adapts a Resolver for the playback controller. It never fails:
// streams, misses, errors and timeouts all resolve to the remote URI.
type Fallback struct {
	resolver Resolver
	timeout  time.Duration
	metrics  *telemetry.Metrics
	logger   zerolog.Logger
}

// NewFallback wraps resolver. A zero timeout uses DefaultTimeout.
func NewFallback(resolver Resolver, timeout time.Duration, metrics *telemetry.Metrics, logger zerolog.Logger) *Fallback {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fallback{
		resolver: resolver,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger.With().Str("component", "cache").Logger(),
	}
}

// Resolve returns the playable URI for remote.
func (f *Fallback) Resolve(remote string) string {
	if remote == "" || IsStream(remote) || f.resolver == nil {
		return remote
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	local, err := f.resolver.ResolvePlayableURI(ctx, remote)
	if err != nil || local == "" {
		f.metrics.CacheLookup(false)
		if err != nil && !errors.Is(err, ErrMiss) {
			f.logger.Debug().Err(err).Str("uri", remote).Msg("cache lookup failed, using remote")
		}
		return remote
	}
	f.metrics.CacheLookup(true)
	return local
}
