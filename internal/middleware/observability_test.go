package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLatencyBucket(t *testing.T) {
	require.Equal(t, "<=25ms", latencyBucket(10*time.Millisecond))
	require.Equal(t, "<=100ms", latencyBucket(100*time.Millisecond))
	require.Equal(t, "<=2s", latencyBucket(1500*time.Millisecond))
	require.Equal(t, ">2s", latencyBucket(3*time.Second))
}

func TestObservedSkipsScrapeAndAssets(t *testing.T) {
	require.True(t, observed("/api/exams"))
	require.True(t, observed("/dashboard"))
	require.False(t, observed("/metrics"))
	require.False(t, observed("/static/app.css"))
}
