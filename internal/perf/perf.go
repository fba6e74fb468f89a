package perf

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andyrewlee/ring0/internal/logging"
)

const (
	sampleWindow      = 256
	defaultIntervalMs = 5000
)

type stat struct {
	mu      sync.Mutex
	count   int64
	total   time.Duration
	min     time.Duration
	max     time.Duration
	samples []time.Duration
	idx     int
	full    bool
}

type statSnapshot struct {
	name  string
	count int64
	avg   time.Duration
	min   time.Duration
	max   time.Duration
	p95   time.Duration
}

type counterSnapshot struct {
	name  string
	value int64
}

var (
	enabled     atomic.Bool
	logInterval atomic.Int64
	lastLog     atomic.Int64

	statsMu  sync.Mutex
	statsMap = map[string]*stat{}

	countersMu sync.Mutex
	counterMap = map[string]*atomic.Int64{}
)

func init() {
	enabled.Store(envEnabled())
	logInterval.Store(int64(envInterval()))
}

// Enabled reports whether profiling is on (RING0_PROFILE).
func Enabled() bool {
	return enabled.Load()
}

// Time returns a stop func that records the elapsed time under name.
func Time(name string) func() {
	if !enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() {
		Record(name, time.Since(start))
	}
}

// Record adds one duration sample for name.
func Record(name string, d time.Duration) {
	if !enabled.Load() {
		return
	}
	s := getStat(name)
	s.mu.Lock()
	s.count++
	s.total += d
	if s.count == 1 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
	if s.samples == nil {
		s.samples = make([]time.Duration, sampleWindow)
	}
	s.samples[s.idx] = d
	s.idx++
	if s.idx >= len(s.samples) {
		s.idx = 0
		s.full = true
	}
	s.mu.Unlock()

	maybeLog()
}

// Count adds delta to the counter name.
func Count(name string, delta int64) {
	if !enabled.Load() {
		return
	}
	getCounter(name).Add(delta)
	maybeLog()
}

func getStat(name string) *stat {
	statsMu.Lock()
	defer statsMu.Unlock()
	s, ok := statsMap[name]
	if !ok {
		s = &stat{}
		statsMap[name] = s
	}
	return s
}

func getCounter(name string) *atomic.Int64 {
	countersMu.Lock()
	defer countersMu.Unlock()
	c, ok := counterMap[name]
	if !ok {
		c = new(atomic.Int64)
		counterMap[name] = c
	}
	return c
}

func maybeLog() {
	interval := time.Duration(logInterval.Load())
	if interval <= 0 {
		return
	}
	now := time.Now().UnixNano()
	last := lastLog.Load()
	if last != 0 && time.Duration(now-last) < interval {
		return
	}
	if !lastLog.CompareAndSwap(last, now) {
		return
	}
	emit("PERF")
}

// Flush logs everything collected so far and resets it.
func Flush(reason string) {
	if !enabled.Load() {
		return
	}
	prefix := "PERF SUMMARY"
	if r := strings.TrimSpace(reason); r != "" {
		prefix = fmt.Sprintf("PERF SUMMARY %s", r)
	}
	emit(prefix)
}

func emit(prefix string) {
	stats, counters := snapshotAndReset()
	for _, s := range stats {
		logging.Info("%s %s count=%d avg=%s p95=%s min=%s max=%s",
			prefix, s.name, s.count, s.avg, s.p95, s.min, s.max)
	}
	for _, c := range counters {
		logging.Info("%s %s count=%d", prefix, c.name, c.value)
	}
}

func snapshotAndReset() ([]statSnapshot, []counterSnapshot) {
	statsMu.Lock()
	names := make([]string, 0, len(statsMap))
	for name := range statsMap {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]*stat, len(names))
	for i, name := range names {
		entries[i] = statsMap[name]
	}
	statsMu.Unlock()

	stats := make([]statSnapshot, 0, len(entries))
	for i, s := range entries {
		s.mu.Lock()
		if s.count == 0 {
			s.mu.Unlock()
			continue
		}
		snap := statSnapshot{
			name:  names[i],
			count: s.count,
			avg:   time.Duration(int64(s.total) / s.count),
			min:   s.min,
			max:   s.max,
			p95:   computeP95(s.samples, s.idx, s.full),
		}
		s.count, s.total, s.min, s.max, s.idx, s.full = 0, 0, 0, 0, 0, false
		s.mu.Unlock()
		stats = append(stats, snap)
	}

	countersMu.Lock()
	cnames := make([]string, 0, len(counterMap))
	for name := range counterMap {
		cnames = append(cnames, name)
	}
	sort.Strings(cnames)
	counters := make([]counterSnapshot, 0, len(cnames))
	for _, name := range cnames {
		if v := counterMap[name].Swap(0); v != 0 {
			counters = append(counters, counterSnapshot{name: name, value: v})
		}
	}
	countersMu.Unlock()

	return stats, counters
}

func computeP95(samples []time.Duration, idx int, full bool) time.Duration {
	n := idx
	if full {
		n = len(samples)
	}
	if n == 0 {
		return 0
	}
	window := make([]time.Duration, n)
	copy(window, samples[:n])
	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
	pos := int(math.Ceil(0.95*float64(n))) - 1
	if pos < 0 {
		pos = 0
	}
	if pos >= n {
		pos = n - 1
	}
	return window[pos]
}

func envEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("RING0_PROFILE"))) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}

func envInterval() time.Duration {
	interval := defaultIntervalMs
	if raw := strings.TrimSpace(os.Getenv("RING0_PROFILE_INTERVAL_MS")); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			interval = val
		}
	}
	return time.Duration(interval) * time.Millisecond
}
