// Package metrics keeps in-process counters and rolling latency/size
// windows for the submission pipeline. Values are exposed on the admin
// dashboard; nothing is exported to an external system.
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const window = 100

const (
	SubmissionsPersisted = "submissions_persisted"
	SubmissionsFailed    = "submissions_failed"
	ExportsSent          = "exports_sent"
	ExportsFailed        = "exports_failed"
	RegistrationsCreated = "registrations_created"

	PersistLatency = "submission_persist"
	ExportLatency  = "export_post"
	ExportSize     = "export_payload"
)

type Collector struct {
	mu        sync.RWMutex
	counters  map[string]map[string]int64
	latencies map[string][]time.Duration
	sizes     map[string][]float64
}

func NewCollector() *Collector {
	return &Collector{
		counters:  make(map[string]map[string]int64),
		latencies: make(map[string][]time.Duration),
		sizes:     make(map[string][]float64),
	}
}

// Inc bumps counter name. labels are folded into a stable key, so
// {"form": "a"} always lands in the same bucket.
func (c *Collector) Inc(name string, labels map[string]string) {
	key := labelKey(labels)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.counters[name]; !ok {
		c.counters[name] = make(map[string]int64)
	}
	c.counters[name][key]++
}

func (c *Collector) ObserveLatency(name string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencies[name] = appendWindow(c.latencies[name], d)
}

func (c *Collector) ObserveSize(name string, bytes float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sizes[name] = appendWindow(c.sizes[name], bytes)
}

// Total sums every label bucket of a counter.
func (c *Collector) Total(name string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, v := range c.counters[name] {
		n += v
	}
	return n
}

// Snapshot is a point-in-time copy of everything collected.
type Snapshot struct {
	Counters  map[string]map[string]int64   `json:"counters"`
	Latencies map[string]map[string]float64 `json:"latencies"`
	Sizes     map[string]map[string]float64 `json:"sizes"`
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Counters:  make(map[string]map[string]int64, len(c.counters)),
		Latencies: make(map[string]map[string]float64, len(c.latencies)),
		Sizes:     make(map[string]map[string]float64, len(c.sizes)),
	}
	for name, buckets := range c.counters {
		s.Counters[name] = make(map[string]int64, len(buckets))
		for k, v := range buckets {
			s.Counters[name][k] = v
		}
	}
	for name, ds := range c.latencies {
		if len(ds) == 0 {
			continue
		}
		var sum, peak time.Duration
		for _, d := range ds {
			sum += d
			peak = max(peak, d)
		}
		s.Latencies[name] = map[string]float64{
			"avg_ms": float64(sum) / float64(len(ds)) / float64(time.Millisecond),
			"max_ms": float64(peak) / float64(time.Millisecond),
		}
	}
	for name, vs := range c.sizes {
		if len(vs) == 0 {
			continue
		}
		var sum, peak float64
		for _, v := range vs {
			sum += v
			peak = max(peak, v)
		}
		s.Sizes[name] = map[string]float64{
			"avg_bytes": sum / float64(len(vs)),
			"max_bytes": peak,
		}
	}
	return s
}

func appendWindow[T any](xs []T, v T) []T {
	xs = append(xs, v)
	if len(xs) > window {
		xs = xs[len(xs)-window:]
	}
	return xs
}

func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return "default"
	}
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, k+":"+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
