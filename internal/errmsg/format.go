// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Feed operations
	OpFeedLoad    Op = "load more items"
	OpFeedRefresh Op = "refresh feed"
	OpItemFetch   Op = "fetch uploaded item"
	OpItemRemove  Op = "remove item"

	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackRetry  Op = "retry playback"
	OpPlaybackReplay Op = "replay"
	OpPlaybackSeek   Op = "seek"

	// Cache operations
	OpCacheOpen     Op = "open media cache"
	OpCachePrefetch Op = "prefetch media"
	OpCacheTrim     Op = "trim media cache"

	// Trace operations
	OpTraceLoad Op = "load scroll trace"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
