package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestSnapshotEmptyCollector(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()

	if snap.AssistantRuns != nil {
		t.Errorf("AssistantRuns = %+v, want nil", snap.AssistantRuns)
	}
	if snap.AgentTasks != nil {
		t.Errorf("AgentTasks = %+v, want nil", snap.AgentTasks)
	}
	if snap.UptimeSeconds < 0 {
		t.Errorf("UptimeSeconds = %f", snap.UptimeSeconds)
	}
}

func TestRecordTimingAggregates(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpMarketSearch, 100*time.Millisecond)
	c.RecordTiming(OpMarketSearch, 300*time.Millisecond)

	snap := c.Snapshot()
	if snap.MarketSearches == nil {
		t.Fatal("MarketSearches = nil")
	}
	if snap.MarketSearches.Count != 2 {
		t.Errorf("Count = %d, want 2", snap.MarketSearches.Count)
	}
	if snap.MarketSearches.MinTimeMs != 100 {
		t.Errorf("MinTimeMs = %d, want 100", snap.MarketSearches.MinTimeMs)
	}
	if snap.MarketSearches.MaxTimeMs != 300 {
		t.Errorf("MaxTimeMs = %d, want 300", snap.MarketSearches.MaxTimeMs)
	}
	if snap.MarketSearches.AvgTimeMs != 200 {
		t.Errorf("AvgTimeMs = %f, want 200", snap.MarketSearches.AvgTimeMs)
	}
	if snap.MarketSearches.TotalPolls != nil {
		t.Errorf("TotalPolls = %v, want nil for non-run op", snap.MarketSearches.TotalPolls)
	}
}

func TestRecordRunTracksPollsAndToolCalls(t *testing.T) {
	c := NewCollector()
	c.RecordRun(2*time.Second, 3, 1)
	c.RecordRun(4*time.Second, 5, 0)

	snap := c.Snapshot()
	runs := snap.AssistantRuns
	if runs == nil {
		t.Fatal("AssistantRuns = nil")
	}
	if runs.Count != 2 {
		t.Errorf("Count = %d, want 2", runs.Count)
	}
	if runs.TotalPolls == nil || *runs.TotalPolls != 8 {
		t.Errorf("TotalPolls = %v, want 8", runs.TotalPolls)
	}
	if runs.MaxPolls == nil || *runs.MaxPolls != 5 {
		t.Errorf("MaxPolls = %v, want 5", runs.MaxPolls)
	}
	if runs.AvgPolls == nil || *runs.AvgPolls != 4 {
		t.Errorf("AvgPolls = %v, want 4", runs.AvgPolls)
	}
	if runs.TotalToolCalls == nil || *runs.TotalToolCalls != 1 {
		t.Errorf("TotalToolCalls = %v, want 1", runs.TotalToolCalls)
	}
}

func TestCollectorConcurrentAccess(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				c.RecordRun(time.Millisecond, 2, 0)
				c.RecordTiming(OpTrendsFetch, time.Millisecond)
				c.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.AssistantRuns.Count != 400 {
		t.Errorf("run count = %d, want 400", snap.AssistantRuns.Count)
	}
	if snap.TrendsFetches.Count != 400 {
		t.Errorf("trends count = %d, want 400", snap.TrendsFetches.Count)
	}
}
