package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds counters for one generate run and, when serving, for the
// artifact API
type Metrics struct {
	FilesRead     int64
	FilesSkipped  int64
	RecordsRead   int64
	RowsBuilt     int64
	RowsFiltered  int64
	ChartsBuilt   int64
	SlicesEmpty   int64
	LensesWritten int64

	RequestCount int64
	ErrorCount   int64
	CacheHits    int64
	CacheMisses  int64
	RateLimited  int64

	StartTime time.Time

	// Stage durations, keyed by stage name
	StageDurations map[string]time.Duration
	StageMutex     sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:      time.Now(),
		StageDurations: make(map[string]time.Duration),
	}
}

func (m *Metrics) IncrementFilesRead()    { atomic.AddInt64(&m.FilesRead, 1) }
func (m *Metrics) IncrementFilesSkipped() { atomic.AddInt64(&m.FilesSkipped, 1) }
func (m *Metrics) AddRecords(n int)       { atomic.AddInt64(&m.RecordsRead, int64(n)) }
func (m *Metrics) AddRows(n int)          { atomic.AddInt64(&m.RowsBuilt, int64(n)) }
func (m *Metrics) SetRowsFiltered(n int)  { atomic.StoreInt64(&m.RowsFiltered, int64(n)) }
func (m *Metrics) IncrementCharts()       { atomic.AddInt64(&m.ChartsBuilt, 1) }
func (m *Metrics) IncrementEmptySlices()  { atomic.AddInt64(&m.SlicesEmpty, 1) }
func (m *Metrics) IncrementLenses()       { atomic.AddInt64(&m.LensesWritten, 1) }

func (m *Metrics) IncrementRequest()     { atomic.AddInt64(&m.RequestCount, 1) }
func (m *Metrics) IncrementError()       { atomic.AddInt64(&m.ErrorCount, 1) }
func (m *Metrics) IncrementCacheHit()    { atomic.AddInt64(&m.CacheHits, 1) }
func (m *Metrics) IncrementCacheMiss()   { atomic.AddInt64(&m.CacheMisses, 1) }
func (m *Metrics) IncrementRateLimited() { atomic.AddInt64(&m.RateLimited, 1) }

// RecordStage stores how long a pipeline stage took. Repeated stages
// accumulate.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	m.StageMutex.Lock()
	defer m.StageMutex.Unlock()
	m.StageDurations[stage] += d
}

// GetStageDurations returns stage durations in milliseconds, ordered by name
func (m *Metrics) GetStageDurations() map[string]int64 {
	m.StageMutex.RLock()
	defer m.StageMutex.RUnlock()

	names := make([]string, 0, len(m.StageDurations))
	for name := range m.StageDurations {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]int64, len(names))
	for _, name := range names {
		out[name] = m.StageDurations[name].Milliseconds()
	}
	return out
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)

	cacheHitRate := float64(0)
	if total := cacheHits + cacheMisses; total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"files_read":             atomic.LoadInt64(&m.FilesRead),
		"files_skipped":          atomic.LoadInt64(&m.FilesSkipped),
		"records_read":           atomic.LoadInt64(&m.RecordsRead),
		"rows_built":             atomic.LoadInt64(&m.RowsBuilt),
		"rows_filtered":          atomic.LoadInt64(&m.RowsFiltered),
		"charts_built":           atomic.LoadInt64(&m.ChartsBuilt),
		"slices_empty":           atomic.LoadInt64(&m.SlicesEmpty),
		"lenses_written":         atomic.LoadInt64(&m.LensesWritten),
		"total_requests":         atomic.LoadInt64(&m.RequestCount),
		"error_count":            atomic.LoadInt64(&m.ErrorCount),
		"rate_limited":           atomic.LoadInt64(&m.RateLimited),
		"cache_hits":             cacheHits,
		"cache_misses":           cacheMisses,
		"cache_hit_rate_percent": cacheHitRate,
		"stage_durations_ms":     m.GetStageDurations(),
		"start_time":             m.StartTime.Format(time.RFC3339),
	}
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	for _, c := range []*int64{
		&m.FilesRead, &m.FilesSkipped, &m.RecordsRead, &m.RowsBuilt,
		&m.RowsFiltered, &m.ChartsBuilt, &m.SlicesEmpty, &m.LensesWritten,
		&m.RequestCount, &m.ErrorCount, &m.CacheHits, &m.CacheMisses, &m.RateLimited,
	} {
		atomic.StoreInt64(c, 0)
	}

	m.StageMutex.Lock()
	m.StageDurations = make(map[string]time.Duration)
	m.StageMutex.Unlock()

	m.StartTime = time.Now()
}
