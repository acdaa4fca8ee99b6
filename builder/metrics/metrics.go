// Package metrics provides build performance tracking.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// BuildMetrics tracks counters and timing for one build run. Counter
// methods are safe for concurrent use from render workers.
type BuildMetrics struct {
	startTime time.Time
	endTime   time.Time

	postsProcessed    atomic.Int64
	booksProcessed    atomic.Int64
	chaptersProcessed atomic.Int64
	pagesWritten      atomic.Int64
	coversGenerated   atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
}

// New creates a metrics instance with the clock started.
func New() *BuildMetrics {
	return &BuildMetrics{startTime: time.Now()}
}

// RecordEnd marks the end of the build.
func (m *BuildMetrics) RecordEnd() {
	m.endTime = time.Now()
}

// TotalDuration returns the build duration so far, or the final duration
// after RecordEnd.
func (m *BuildMetrics) TotalDuration() time.Duration {
	if m.endTime.IsZero() {
		return time.Since(m.startTime)
	}
	return m.endTime.Sub(m.startTime)
}

func (m *BuildMetrics) IncrementPosts()    { m.postsProcessed.Add(1) }
func (m *BuildMetrics) IncrementBooks()    { m.booksProcessed.Add(1) }
func (m *BuildMetrics) IncrementChapters() { m.chaptersProcessed.Add(1) }
func (m *BuildMetrics) IncrementPages()    { m.pagesWritten.Add(1) }
func (m *BuildMetrics) IncrementCovers()   { m.coversGenerated.Add(1) }
func (m *BuildMetrics) IncrementCacheHit() { m.cacheHits.Add(1) }
func (m *BuildMetrics) IncrementCacheMiss() {
	m.cacheMisses.Add(1)
}

func (m *BuildMetrics) Posts() int64    { return m.postsProcessed.Load() }
func (m *BuildMetrics) Books() int64    { return m.booksProcessed.Load() }
func (m *BuildMetrics) Chapters() int64 { return m.chaptersProcessed.Load() }
func (m *BuildMetrics) Pages() int64    { return m.pagesWritten.Load() }
func (m *BuildMetrics) Covers() int64   { return m.coversGenerated.Load() }

// CacheHitRate returns the cache hit percentage.
func (m *BuildMetrics) CacheHitRate() float64 {
	hits, misses := m.cacheHits.Load(), m.cacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Summary formats a one-line build report.
func (m *BuildMetrics) Summary() string {
	return fmt.Sprintf("posts=%d books=%d chapters=%d pages=%d covers=%d cache=%.0f%% in %s",
		m.Posts(), m.Books(), m.Chapters(), m.Pages(), m.Covers(),
		m.CacheHitRate(), m.TotalDuration().Round(time.Millisecond))
}
