package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/reels/internal/telemetry"
)

type resolverFunc func(ctx context.Context, remote string) (string, error)

func (f resolverFunc) ResolvePlayableURI(ctx context.Context, remote string) (string, error) {
	return f(ctx, remote)
}

func TestIsStream(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"https://cdn.example.com/u/a.m3u8", true},
		{"https://cdn.example.com/u/a.M3U8?token=x", true},
		{"https://cdn.example.com/v/1.mp4", false},
		{"https://cdn.example.com/v/1.mp4?f=.m3u8", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsStream(tt.uri), tt.uri)
	}
}

func TestFallback_Resolve(t *testing.T) {
	const remote = "https://cdn.example.com/v/1.mp4"
	errBoom := errors.New("boom")

	tests := []struct {
		name     string
		resolver Resolver
		remote   string
		want     string
		hits     float64
		misses   float64
	}{
		{
			name:     "hit",
			resolver: resolverFunc(func(context.Context, string) (string, error) { return "file:///c/1.mp4", nil }),
			remote:   remote,
			want:     "file:///c/1.mp4",
			hits:     1,
		},
		{
			name:     "miss",
			resolver: resolverFunc(func(context.Context, string) (string, error) { return "", ErrMiss }),
			remote:   remote,
			want:     remote,
			misses:   1,
		},
		{
			name:     "error",
			resolver: resolverFunc(func(context.Context, string) (string, error) { return "", errBoom }),
			remote:   remote,
			want:     remote,
			misses:   1,
		},
		{
			name:     "empty local",
			resolver: resolverFunc(func(context.Context, string) (string, error) { return "", nil }),
			remote:   remote,
			want:     remote,
			misses:   1,
		},
		{
			name: "stream passes through",
			resolver: resolverFunc(func(context.Context, string) (string, error) {
				t.Error("resolver called for a stream")
				return "", nil
			}),
			remote: "https://cdn.example.com/u/a.m3u8",
			want:   "https://cdn.example.com/u/a.m3u8",
		},
		{
			name:   "no resolver",
			remote: remote,
			want:   remote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := telemetry.New()
			f := NewFallback(tt.resolver, 0, m, zerolog.Nop())

			assert.Equal(t, tt.want, f.Resolve(tt.remote))
			assert.InDelta(t, tt.hits, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")), 0)
			assert.InDelta(t, tt.misses, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")), 0)
		})
	}
}

func TestFallback_Timeout(t *testing.T) {
	slow := resolverFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	f := NewFallback(slow, 10*time.Millisecond, nil, zerolog.Nop())

	start := time.Now()
	got := f.Resolve("https://cdn.example.com/v/1.mp4")

	assert.Equal(t, "https://cdn.example.com/v/1.mp4", got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestMemory_FrontsNext(t *testing.T) {
	ctx := context.Background()
	calls := 0
	next := resolverFunc(func(_ context.Context, remote string) (string, error) {
		calls++
		if remote == "a" {
			return "file:///a", nil
		}
		return "", ErrMiss
	})
	m := NewMemory(next)

	for range 3 {
		got, err := m.ResolvePlayableURI(ctx, "a")
		assert.NoError(t, err)
		assert.Equal(t, "file:///a", got)
	}
	assert.Equal(t, 1, calls, "later lookups are served from memory")

	_, err := m.ResolvePlayableURI(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)

	m.Forget("a")
	_, _ = m.ResolvePlayableURI(ctx, "a")
	assert.Equal(t, 3, calls)
}

func TestMemory_Standalone(t *testing.T) {
	m := NewMemory(nil)
	_, err := m.ResolvePlayableURI(context.Background(), "a")
	assert.ErrorIs(t, err, ErrMiss)

	m.Store("a", "file:///a")
	got, err := m.ResolvePlayableURI(context.Background(), "a")
	assert.NoError(t, err)
	assert.Equal(t, "file:///a", got)
}
