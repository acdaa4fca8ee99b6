package metrics

import (
	"strings"
	"sync"
	"testing"
)

func TestCountersAreConcurrencySafe(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncrementPosts()
				m.IncrementPages()
			}
		}()
	}
	wg.Wait()

	if m.Posts() != 800 {
		t.Errorf("Posts = %d, want 800", m.Posts())
	}
	if m.Pages() != 800 {
		t.Errorf("Pages = %d, want 800", m.Pages())
	}
}

func TestCacheHitRate(t *testing.T) {
	m := New()
	if rate := m.CacheHitRate(); rate != 0 {
		t.Errorf("empty rate = %v, want 0", rate)
	}

	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()

	if rate := m.CacheHitRate(); rate != 75 {
		t.Errorf("rate = %v, want 75", rate)
	}
}

func TestSummaryMentionsCounts(t *testing.T) {
	m := New()
	m.IncrementPosts()
	m.IncrementBooks()
	m.IncrementChapters()
	m.RecordEnd()

	s := m.Summary()
	for _, want := range []string{"1"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary %q missing %q", s, want)
		}
	}
	if m.TotalDuration() < 0 {
		t.Error("negative duration")
	}
}
