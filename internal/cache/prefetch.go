package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

const prefetchQueue = 32

// Downloader fetches remote into the cache and returns where it landed.
type Downloader interface {
	Download(ctx context.Context, remote string) (local string, size int64, err error)
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(ctx context.Context, remote string) (string, int64, error)

// Download calls f.
func (f DownloaderFunc) Download(ctx context.Context, remote string) (string, int64, error) {
	return f(ctx, remote)
}

// Store is where prefetched files are recorded.
type Store interface {
	Contains(ctx context.Context, remote string) (bool, error)
	Put(ctx context.Context, remote, local string, size int64) error
}

// Prefetcher downloads media ahead of activation on a background worker.
// Prefetch never blocks: requests beyond the queue are dropped, since the
// next activation queues a fresh plan anyway.
type Prefetcher struct {
	store      Store
	downloader Downloader
	memory     *Memory
	logger     zerolog.Logger

	queue chan string

	mu       sync.Mutex
	inflight map[string]bool
}

// NewPrefetcher creates a prefetcher. memory may be nil; when set, finished
// downloads are published to it.
func NewPrefetcher(store Store, downloader Downloader, memory *Memory, logger zerolog.Logger) *Prefetcher {
	return &Prefetcher{
		store:      store,
		downloader: downloader,
		memory:     memory,
		logger:     logger.With().Str("component", "prefetch").Logger(),
		queue:      make(chan string, prefetchQueue),
		inflight:   make(map[string]bool),
	}
}

// Prefetch queues uris in priority order. Streams and URIs already queued
// are skipped.
func (p *Prefetcher) Prefetch(uris ...string) {
	for _, uri := range uris {
		if uri == "" || IsStream(uri) {
			continue
		}
		p.mu.Lock()
		if p.inflight[uri] {
			p.mu.Unlock()
			continue
		}
		p.inflight[uri] = true
		p.mu.Unlock()

		select {
		case p.queue <- uri:
		default:
			p.done(uri)
			p.logger.Debug().Str("uri", uri).Msg("prefetch queue full, dropped")
		}
	}
}

// Run downloads queued URIs until ctx is done.
func (p *Prefetcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case uri := <-p.queue:
			if err := p.fetch(ctx, uri); err != nil {
				p.logger.Debug().Err(err).Str("uri", uri).Msg("prefetch failed")
			}
			p.done(uri)
		}
	}
}

func (p *Prefetcher) done(uri string) {
	p.mu.Lock()
	delete(p.inflight, uri)
	p.mu.Unlock()
}

func (p *Prefetcher) fetch(ctx context.Context, remote string) error {
	cached, err := p.store.Contains(ctx, remote)
	if err != nil {
		return err
	}
	if cached {
		return nil
	}

	local, size, err := p.downloader.Download(ctx, remote)
	if err != nil {
		return fmt.Errorf("download %q: %w", remote, err)
	}
	if err := p.store.Put(ctx, remote, local, size); err != nil {
		return err
	}
	if p.memory != nil {
		p.memory.Store(remote, local)
	}
	p.logger.Debug().
		Str("uri", remote).
		Str("local", local).
		Str("size", humanize.Bytes(uint64(max(size, 0)))).
		Msg("prefetched")
	return nil
}

// LocalName returns a stable file name for remote inside a cache directory.
func LocalName(remote string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(remote))
	return fmt.Sprintf("%016x.mp4", h.Sum64())
}
