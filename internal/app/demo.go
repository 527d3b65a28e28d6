package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/reels/internal/cache"
	"github.com/llehouerou/reels/internal/config"
	"github.com/llehouerou/reels/internal/errmsg"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/icons"
	"github.com/llehouerou/reels/internal/media"
	"github.com/llehouerou/reels/internal/playback"
	"github.com/llehouerou/reels/internal/scheduler"
	"github.com/llehouerou/reels/internal/telemetry"
)

// Options configures the demo.
type Options struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Total       int    // items in the synthetic feed
	BrokenEvery int    // every n-th item fails to decode
	StallEvery  int    // every n-th item stalls
	MetricsAddr string // overrides the configured metrics address
}

// Run starts the scheduler, the cache and the terminal host, and blocks
// until the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	logger := opts.Logger
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	metrics := telemetry.New()
	stopMetrics := serveMetrics(firstNonEmpty(opts.MetricsAddr, cfg.Metrics.Addr), metrics, logger)
	defer stopMetrics()

	feedCfg := cfg.GetFeedConfig()
	pager := markFaults(feed.SyntheticPager{PageSize: feedCfg.PageSize, Total: opts.Total},
		opts.BrokenEvery, opts.StallEvery)
	seq := feed.NewSequence(pager)

	var (
		resolver   playback.Resolver
		prefetcher scheduler.Prefetcher
	)
	if cfg.CacheEnabled() {
		index, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpCacheOpen, err))
		}
		defer index.Close()

		if evicted, err := index.Trim(ctx, cfg.CacheMaxBytes()); err != nil {
			logger.Warn().Msg(errmsg.Format(errmsg.OpCacheTrim, err))
		} else if len(evicted) > 0 {
			logger.Info().Int("entries", len(evicted)).Msg("cache trimmed")
		}

		memory := cache.NewMemory(index)
		resolver = cache.NewFallback(memory, cfg.CacheTimeout(), metrics, logger)
		p := cache.NewPrefetcher(index, simDownloader(filepath.Join(xdg.CacheHome, "reels", "media"), 200*time.Millisecond), memory, logger)
		go p.Run(ctx)
		prefetcher = p
	}

	scroller := newMailboxScroller()
	sched := scheduler.New(cfg.GetSchedulerConfig(), scheduler.Deps{
		Sequence:   seq,
		Scroller:   scroller,
		Factory:    media.NewSimFactory(media.DefaultSimConfig()),
		Resolver:   resolver,
		Fetcher:    uploadFetcher(time.Second),
		Prefetcher: prefetcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	defer func() {
		if err := sched.Close(); err != nil {
			logger.Warn().Err(err).Msg("close scheduler")
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("scheduler stopped")
		}
	}()
	sched.Post(scheduler.Refresh{})

	icons.Init(cfg.Icons)
	model := NewModel(ctx, sched, scroller, logger)
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	cancel()
	<-loopDone
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func serveMetrics(addr string, metrics *telemetry.Metrics, logger zerolog.Logger) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn().Err(fmt.Errorf("shutdown metrics: %w", err)).Send()
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
