package perf

import (
	"sync"
	"testing"
	"time"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// TestRecorder_Report verifies grouping per name and the kind split.
func TestRecorder_Report(t *testing.T) {
	r := NewRecorder(16)
	now := time.Now()

	r.Record(Sample{Kind: KindRequest, Name: "GET /leiding", Status: 200, Took: ms(10), At: now})
	r.Record(Sample{Kind: KindRequest, Name: "GET /leiding", Status: 502, Took: ms(30), At: now})
	r.Record(Sample{Kind: KindRequest, Name: "GET /groups", Status: 200, Took: ms(5), At: now})
	r.Record(Sample{Kind: KindQuery, Name: "query", Took: ms(2), At: now})

	rep := r.Report(now.Add(-time.Minute), 10)
	if rep.Total != 4 || rep.Requests != 3 {
		t.Fatalf("Total=%d Requests=%d, want 4 and 3", rep.Total, rep.Requests)
	}
	if len(rep.SlowRoutes) != 2 || rep.SlowRoutes[0].Name != "GET /leiding" {
		t.Fatalf("SlowRoutes = %+v", rep.SlowRoutes)
	}
	top := rep.SlowRoutes[0]
	if top.Mean != ms(20) || top.Max != ms(30) || top.Errors != 1 {
		t.Errorf("leiding stat = %+v", top)
	}
	if len(rep.SlowQueries) != 1 || rep.SlowQueries[0].Count != 1 {
		t.Errorf("SlowQueries = %+v", rep.SlowQueries)
	}
}

// TestRecorder_RingOverwrites verifies only the newest samples are kept.
func TestRecorder_RingOverwrites(t *testing.T) {
	r := NewRecorder(3)
	now := time.Now()
	for i := 1; i <= 5; i++ {
		r.Record(Sample{Kind: KindRequest, Name: "GET /x", Took: ms(i), At: now})
	}
	rep := r.Report(time.Time{}, 0)
	if rep.Total != 5 {
		t.Errorf("Total = %d, want 5", rep.Total)
	}
	if rep.Requests != 3 || rep.SlowRoutes[0].Mean != ms(4) {
		t.Errorf("kept %d samples with mean %v, want 3 with 4ms", rep.Requests, rep.SlowRoutes[0].Mean)
	}
}

func TestRecorder_Quantiles(t *testing.T) {
	r := NewRecorder(200)
	now := time.Now()
	for i := 1; i <= 100; i++ {
		r.Record(Sample{Kind: KindRequest, Name: "GET /p", Took: ms(i), At: now})
	}
	rep := r.Report(time.Time{}, 1)
	if rep.P50 != ms(50) || rep.P95 != ms(95) || rep.P99 != ms(99) {
		t.Errorf("P50=%v P95=%v P99=%v", rep.P50, rep.P95, rep.P99)
	}
}

func TestRecorder_SinceFilter(t *testing.T) {
	r := NewRecorder(10)
	now := time.Now()
	r.Record(Sample{Kind: KindRequest, Name: "old", Took: ms(1), At: now.Add(-time.Hour)})
	r.Record(Sample{Kind: KindRequest, Name: "new", Took: ms(1), At: now})
	rep := r.Report(now.Add(-time.Minute), 10)
	if rep.Requests != 1 || rep.SlowRoutes[0].Name != "new" {
		t.Errorf("report = %+v", rep)
	}
}

func TestRecorder_Empty(t *testing.T) {
	rep := NewRecorder(0).Report(time.Time{}, 5)
	if rep.Requests != 0 || rep.P99 != 0 || len(rep.SlowRoutes) != 0 {
		t.Errorf("empty report = %+v", rep)
	}
}

func TestRecorder_ConcurrentRecord(t *testing.T) {
	r := NewRecorder(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Record(Sample{Kind: KindQuery, Name: "q", Took: ms(1), At: time.Now()})
			}
		}()
	}
	wg.Wait()
	if r.Total() != 800 {
		t.Errorf("Total = %d, want 800", r.Total())
	}
}
