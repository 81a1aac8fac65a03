package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates a cache pattern with logging.
// Cache invalidation failure must never fail the write that triggered it.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateIssueCache drops every cached view an issue mutation can
// stale: the issue itself, the scoped lists, and the college stats.
func InvalidateIssueCache(ctx context.Context, cm *CacheManager, issueID uint) {
	SafeDelete(ctx, cm.Issue,
		fmt.Sprintf("id:%d", issueID),
		fmt.Sprintf("details:%d", issueID))
	SafeInvalidatePattern(ctx, cm.Issue, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "college:*")
}

// InvalidateUserCache drops a cached user row.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, casdoorID string) {
	SafeDelete(ctx, cm.User, "casdoor:"+casdoorID)
}
