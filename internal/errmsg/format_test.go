//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpFeedLoad,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpFeedLoad,
			err:      errors.New("connection reset"),
			expected: "Failed to load more items: connection reset",
		},
		{
			name:     "refresh operation",
			op:       OpFeedRefresh,
			err:      errors.New("timeout"),
			expected: "Failed to refresh feed: timeout",
		},
		{
			name:     "playback operation",
			op:       OpPlaybackStart,
			err:      errors.New("load failed"),
			expected: "Failed to start playback: load failed",
		},
		{
			name:     "cache operation",
			op:       OpCacheOpen,
			err:      errors.New("disk full"),
			expected: "Failed to open media cache: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpItemRemove,
			context:  "item-4",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpItemRemove,
			context:  "item-4",
			err:      errors.New("not found"),
			expected: "Failed to remove item 'item-4': not found",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpItemRemove,
			context:  "",
			err:      errors.New("not found"),
			expected: "Failed to remove item: not found",
		},
		{
			name:     "trace with path context",
			op:       OpTraceLoad,
			context:  "fling.yaml",
			err:      errors.New("yaml: line 3"),
			expected: "Failed to load scroll trace 'fling.yaml': yaml: line 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpFeedLoad, OpFeedRefresh, OpItemFetch, OpItemRemove,
		OpPlaybackStart, OpPlaybackRetry, OpPlaybackReplay, OpPlaybackSeek,
		OpCacheOpen, OpCachePrefetch, OpCacheTrim,
		OpTraceLoad,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
