package rng

import (
	"math"
	"sync"
	"time"
)

const (
	healthSamples = 1000
	healthBins    = 100

	// HealthAttempts is how many consecutive failed runs mark a source
	// unhealthy. A sound source fails one run about 1% of the time.
	HealthAttempts = 3
)

// HealthResult contains RNG health check results
type HealthResult struct {
	Healthy         bool      `json:"healthy"`
	Timestamp       time.Time `json:"timestamp"`
	Samples         int       `json:"samples"`
	Attempts        int       `json:"attempts"`
	ChiSquare       float64   `json:"chi_square"`
	ChiSquarePassed bool      `json:"chi_square_passed"`
}

// HealthCheck draws a batch from src and runs a chi-square uniformity test
// over 100 bins.
func HealthCheck(src Source) *HealthResult {
	samples := make([]int, healthSamples)
	for i := range samples {
		samples[i] = Intn(src, healthBins)
	}

	chi, passed := ChiSquare(samples, healthBins)

	return &HealthResult{
		Healthy:         passed,
		Timestamp:       time.Now(),
		Samples:         healthSamples,
		Attempts:        1,
		ChiSquare:       chi,
		ChiSquarePassed: passed,
	}
}

// HealthCheckRetry runs HealthCheck up to attempts times and returns the
// first passing result, or the last failing one.
func HealthCheckRetry(src Source, attempts int) *HealthResult {
	if attempts < 1 {
		attempts = 1
	}
	var result *HealthResult
	for i := 1; i <= attempts; i++ {
		result = HealthCheck(src)
		result.Attempts = i
		if result.Healthy {
			break
		}
	}
	return result
}

// Monitor caches health results for ttl so frequent probes do not keep
// drawing from a live source.
type Monitor struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	last      *HealthResult
	checkedAt time.Time
}

func NewMonitor(src Source, ttl time.Duration) *Monitor {
	return &Monitor{src: src, ttl: ttl, now: time.Now}
}

// Check returns the cached result, running a fresh HealthCheckRetry once
// the cache has expired.
func (m *Monitor) Check() HealthResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil || m.now().Sub(m.checkedAt) >= m.ttl {
		m.last = HealthCheckRetry(m.src, HealthAttempts)
		m.checkedAt = m.now()
	}
	return *m.last
}

// ChiSquare computes the statistic for samples spread over bins and compares
// it with the 99% critical value.
func ChiSquare(samples []int, bins int) (float64, bool) {
	counts := make([]int, bins)
	for _, sample := range samples {
		counts[sample%bins]++
	}

	expected := float64(len(samples)) / float64(bins)

	var chi float64
	for _, count := range counts {
		diff := float64(count) - expected
		chi += (diff * diff) / expected
	}

	// 99 degrees of freedom
	critical := 134.6
	if bins != 100 {
		critical = float64(bins-1) + 2.576*math.Sqrt(2.0*float64(bins-1))
	}

	return chi, chi < critical
}
