package testutil

import (
	"context"
	"testing"
	"time"
)

// TestContext creates a context with timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Day returns base shifted by n whole days, for building daily histories.
func Day(base time.Time, n int) time.Time {
	return base.Add(time.Duration(n) * 24 * time.Hour)
}
