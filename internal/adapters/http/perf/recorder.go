// Package perf keeps a bounded window of request and query timings for the
// admin performance page.
package perf

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// DefaultCapacity is the number of samples kept when none is configured.
const DefaultCapacity = 4096

// Kind separates HTTP requests from database calls.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// Sample is one timed operation.
type Sample struct {
	Kind   Kind
	Name   string // "GET /leiding" or "query:leiding"
	Status int    // HTTP status; 0 for queries
	Took   time.Duration
	At     time.Time
}

// Recorder is a fixed-size ring of samples. Record never blocks on readers
// for longer than a slice copy.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
	next    int
	full    bool
	total   uint64
}

// NewRecorder returns a recorder holding at most capacity samples.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{samples: make([]Sample, capacity)}
}

// Record stores s, overwriting the oldest sample when the ring is full.
func (r *Recorder) Record(s Sample) {
	r.mu.Lock()
	r.samples[r.next] = s
	r.next++
	if r.next == len(r.samples) {
		r.next = 0
		r.full = true
	}
	r.total++
	r.mu.Unlock()
}

// Total returns how many samples were ever recorded.
func (r *Recorder) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// window copies the retained samples, oldest first.
func (r *Recorder) window() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return slices.Clone(r.samples[:r.next])
	}
	out := make([]Sample, 0, len(r.samples))
	out = append(out, r.samples[r.next:]...)
	return append(out, r.samples[:r.next]...)
}

// Stat aggregates the samples sharing a Name.
type Stat struct {
	Name   string
	Count  int
	Errors int // requests answered with a 5xx
	Mean   time.Duration
	Max    time.Duration
}

// Report summarises the retained window.
type Report struct {
	Total       uint64
	Requests    int
	P50         time.Duration
	P95         time.Duration
	P99         time.Duration
	SlowRoutes  []Stat
	SlowQueries []Stat
}

// Report aggregates samples taken at or after since, listing at most top
// names per kind ordered by mean duration.
func (r *Recorder) Report(since time.Time, top int) Report {
	var durations []time.Duration
	routes := map[string]*Stat{}
	queries := map[string]*Stat{}

	for _, s := range r.window() {
		if s.At.Before(since) {
			continue
		}
		bucket := queries
		if s.Kind == KindRequest {
			bucket = routes
			durations = append(durations, s.Took)
		}
		st := bucket[s.Name]
		if st == nil {
			st = &Stat{Name: s.Name}
			bucket[s.Name] = st
		}
		st.Count++
		st.Mean += s.Took // summed here, divided below
		st.Max = max(st.Max, s.Took)
		if s.Status >= 500 {
			st.Errors++
		}
	}

	slices.Sort(durations)
	return Report{
		Total:       r.Total(),
		Requests:    len(durations),
		P50:         quantile(durations, 0.50),
		P95:         quantile(durations, 0.95),
		P99:         quantile(durations, 0.99),
		SlowRoutes:  slowest(routes, top),
		SlowQueries: slowest(queries, top),
	}
}

// quantile uses the nearest-rank method on sorted input.
func quantile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q*float64(len(sorted))+0.5) - 1
	idx = min(max(idx, 0), len(sorted)-1)
	return sorted[idx]
}

func slowest(stats map[string]*Stat, top int) []Stat {
	out := make([]Stat, 0, len(stats))
	for _, st := range stats {
		st.Mean /= time.Duration(st.Count)
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b Stat) int {
		if c := cmp.Compare(b.Mean, a.Mean); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}
