package app

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"time"

	"github.com/llehouerou/reels/internal/cache"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/insertion"
)

// markFaults rewrites the media URIs of every brokenEvery-th item so the
// simulated decoder fails on it, and of every stallEvery-th so it stalls.
// Zero disables a fault.
func markFaults(pager feed.Pager, brokenEvery, stallEvery int) feed.Pager {
	return feed.PagerFunc(func(ctx context.Context, cursor string) (feed.Page, error) {
		page, err := pager.FetchPage(ctx, cursor)
		if err != nil {
			return page, err
		}
		for i := range page.Items {
			n := itemNumber(page.Items[i].ID)
			switch {
			case n > 0 && brokenEvery > 0 && n%brokenEvery == 0:
				page.Items[i].MediaURI = strings.Replace(page.Items[i].MediaURI, ".mp4", "-broken.mp4", 1)
			case n > 0 && stallEvery > 0 && n%stallEvery == 0:
				page.Items[i].MediaURI = strings.Replace(page.Items[i].MediaURI, ".mp4", "-stall.mp4", 1)
			}
		}
		return page, nil
	})
}

func itemNumber(id string) int {
	var n int
	if _, err := fmt.Sscanf(id, "item-%d", &n); err != nil {
		return -1
	}
	return n
}

// simDownloader pretends to download remote into dir.
func simDownloader(dir string, delay time.Duration) cache.Downloader {
	return cache.DownloaderFunc(func(ctx context.Context, remote string) (string, int64, error) {
		select {
		case <-ctx.Done():
			return "", 0, ctx.Err()
		case <-time.After(delay):
		}
		if strings.Contains(remote, "broken") {
			return "", 0, fmt.Errorf("simulated download of %q: not found", remote)
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(remote))
		size := int64(2_000_000 + h.Sum32()%6_000_000)
		return "file://" + filepath.Join(dir, cache.LocalName(remote)), size, nil
	})
}

// uploadFetcher resolves uploaded ids after a processing delay.
func uploadFetcher(delay time.Duration) insertion.ItemFetcher {
	return insertion.FetcherFunc(func(ctx context.Context, id string) (feed.Item, error) {
		select {
		case <-ctx.Done():
			return feed.Item{}, ctx.Err()
		case <-time.After(delay):
		}
		return feed.Uploaded(id), nil
	})
}
