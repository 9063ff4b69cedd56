package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount           int64
	ErrorCount             int64
	CacheHits              int64
	CacheMisses            int64
	ConfigurationsComputed int64
	VignettesGenerated     int64
	RateLimitBlocks        int64
	RateLimitRedisErrors   int64
	StartTime              time.Time

	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		ResponseTimes:        make([]time.Duration, 0, 1000),
		RequestCountByStatus: make(map[int]int64),
	}
}

// IncrementRequest records one handled request with its status code.
func (m *Metrics) IncrementRequest(statusCode int, duration time.Duration) {
	atomic.AddInt64(&m.RequestCount, 1)
	if statusCode >= 500 {
		atomic.AddInt64(&m.ErrorCount, 1)
	}

	m.StatusMutex.Lock()
	m.RequestCountByStatus[statusCode]++
	m.StatusMutex.Unlock()

	m.ResponseTimesMutex.Lock()
	// Keep a bounded window of samples for percentile calculation.
	if len(m.ResponseTimes) >= 1000 {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimes = append(m.ResponseTimes, duration)
	m.ResponseTimesMutex.Unlock()
}

// IncrementCacheHit records a cache hit
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss records a cache miss
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementConfigurationComputed records one freshly computed incentive
// configuration.
func (m *Metrics) IncrementConfigurationComputed() {
	atomic.AddInt64(&m.ConfigurationsComputed, 1)
}

// AddVignettesGenerated records how many vignettes an enumeration produced.
func (m *Metrics) AddVignettesGenerated(count int) {
	atomic.AddInt64(&m.VignettesGenerated, int64(count))
}

// IncrementRateLimitBlock records a blocked request
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
}

// IncrementRateLimitRedisError records a failed Redis rate limit check
func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.RateLimitRedisErrors, 1)
}

// ResponseTimePercentile returns the given response time percentile over the
// current sample window.
func (m *Metrics) ResponseTimePercentile(p float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	samples := make([]time.Duration, len(m.ResponseTimes))
	copy(samples, m.ResponseTimes)
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	idx := int(float64(len(samples)-1) * p / 100)
	return samples[idx]
}

// GetStats returns a snapshot of all metrics
func (m *Metrics) GetStats() map[string]interface{} {
	m.StatusMutex.RLock()
	byStatus := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		byStatus[code] = count
	}
	m.StatusMutex.RUnlock()

	return map[string]interface{}{
		"uptime_seconds":          time.Since(m.StartTime).Seconds(),
		"request_count":           atomic.LoadInt64(&m.RequestCount),
		"error_count":             atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":              atomic.LoadInt64(&m.CacheHits),
		"cache_misses":            atomic.LoadInt64(&m.CacheMisses),
		"configurations_computed": atomic.LoadInt64(&m.ConfigurationsComputed),
		"vignettes_generated":     atomic.LoadInt64(&m.VignettesGenerated),
		"rate_limit_blocks":       atomic.LoadInt64(&m.RateLimitBlocks),
		"rate_limit_redis_errors": atomic.LoadInt64(&m.RateLimitRedisErrors),
		"requests_by_status":      byStatus,
		"p50_response_ms":         m.ResponseTimePercentile(50).Milliseconds(),
		"p95_response_ms":         m.ResponseTimePercentile(95).Milliseconds(),
		"p99_response_ms":         m.ResponseTimePercentile(99).Milliseconds(),
	}
}
