package metrics

import (
	"sort"
	"sync"
	"time"
)

// keep at most this many latency samples per upstream
const maxSamples = 1000

type Metrics struct {
	mu            sync.RWMutex
	requests      map[string]int64
	selections    map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	healthStatus  map[string]bool
	rejected      int64
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                      `json:"total_requests"`
	Rejected      int64                      `json:"rejected"`
	Uptime        time.Duration              `json:"uptime"`
	Strategy      string                     `json:"strategy"`
	Upstreams     map[string]UpstreamMetrics `json:"upstreams"`
}

type UpstreamMetrics struct {
	Requests    int64         `json:"requests"`
	Selections  int64         `json:"selections"`
	Healthy     bool          `json:"healthy"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		selections:    make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		healthStatus:  make(map[string]bool),
		startTime:     time.Now(),
	}
}

func (m *Metrics) IncrementRequests(upstream string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[upstream]++
}

func (m *Metrics) RecordSelection(upstream string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections[upstream]++
}

func (m *Metrics) IncrementRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected++
}

func (m *Metrics) RecordResponse(upstream string, duration time.Duration, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responseTimes[upstream] = append(m.responseTimes[upstream], duration)
	if len(m.responseTimes[upstream]) > maxSamples {
		m.responseTimes[upstream] = m.responseTimes[upstream][1:]
	}

	if m.statusCodes[upstream] == nil {
		m.statusCodes[upstream] = make(map[int]int64)
	}
	m.statusCodes[upstream][statusCode]++
}

func (m *Metrics) UpdateHealthStatus(upstream string, healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus[upstream] = healthy
}

func (m *Metrics) Snapshot(strategy string) Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Rejected:  m.rejected,
		Uptime:    time.Since(m.startTime),
		Strategy:  strategy,
		Upstreams: make(map[string]UpstreamMetrics),
	}

	all := make(map[string]bool)
	for upstream := range m.requests {
		all[upstream] = true
	}
	for upstream := range m.selections {
		all[upstream] = true
	}
	for upstream := range m.responseTimes {
		all[upstream] = true
	}
	for upstream := range m.healthStatus {
		all[upstream] = true
	}

	for upstream := range all {
		snap.TotalRequests += m.requests[upstream]

		um := UpstreamMetrics{
			Requests:   m.requests[upstream],
			Selections: m.selections[upstream],
			Healthy:    m.healthStatus[upstream],
		}

		// copy the counts so the snapshot never aliases the live map;
		// callers encode snapshots outside the lock
		if codes := m.statusCodes[upstream]; len(codes) > 0 {
			um.StatusCodes = make(map[int]int64, len(codes))
			for code, count := range codes {
				um.StatusCodes[code] = count
			}
		}

		durations := m.responseTimes[upstream]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			um.AvgResponse = average(sorted)
			um.P50Response = percentile(sorted, 0.50)
			um.P95Response = percentile(sorted, 0.95)
			um.P99Response = percentile(sorted, 0.99)
		}

		snap.Upstreams[upstream] = um
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
