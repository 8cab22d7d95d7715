// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// Operation names for the collector.
const (
	OpAssistantRun = "assistant_run"
	OpAgentTask    = "agent_task"
	OpMarketSearch = "market_search"
	OpTrendsFetch  = "trends_fetch"
)

// opMetrics holds aggregated raw numbers for a single operation type.
type opMetrics struct {
	count     int64
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration

	// Run metrics (only for assistant runs)
	totalPolls     int64
	maxPolls       int64
	totalToolCalls int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"totalTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
	MinTimeMs   int64   `json:"minTimeMs"`
	MaxTimeMs   int64   `json:"maxTimeMs"`

	// Poll stats (nil if not applicable)
	TotalPolls     *int64   `json:"totalPolls,omitempty"`
	AvgPolls       *float64 `json:"avgPolls,omitempty"`
	MaxPolls       *int64   `json:"maxPolls,omitempty"`
	TotalToolCalls *int64   `json:"totalToolCalls,omitempty"`
}

// Snapshot represents the full service statistics at a point in time.
type Snapshot struct {
	UptimeSeconds  float64            `json:"uptimeSeconds"`
	AssistantRuns  *OperationSnapshot `json:"assistantRuns,omitempty"`
	AgentTasks     *OperationSnapshot `json:"agentTasks,omitempty"`
	MarketSearches *OperationSnapshot `json:"marketSearches,omitempty"`
	TrendsFetches  *OperationSnapshot `json:"trendsFetches,omitempty"`
}

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*opMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*opMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *opMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &opMetrics{minTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.count++
	m.totalTime += duration

	if duration < m.minTime {
		m.minTime = duration
	}
	if duration > m.maxTime {
		m.maxTime = duration
	}
}

// RecordRun records one completed assistant run with its status-poll and
// tool-call counts.
func (c *Collector) RecordRun(duration time.Duration, polls, toolCalls int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(OpAssistantRun)
	m.count++
	m.totalTime += duration

	if duration < m.minTime {
		m.minTime = duration
	}
	if duration > m.maxTime {
		m.maxTime = duration
	}

	m.totalPolls += int64(polls)
	if int64(polls) > m.maxPolls {
		m.maxPolls = int64(polls)
	}
	m.totalToolCalls += int64(toolCalls)
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *opMetrics, includePolls bool) *OperationSnapshot {
	if m == nil || m.count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.count,
		TotalTimeMs: m.totalTime.Milliseconds(),
		AvgTimeMs:   float64(m.totalTime.Milliseconds()) / float64(m.count),
		MinTimeMs:   m.minTime.Milliseconds(),
		MaxTimeMs:   m.maxTime.Milliseconds(),
	}

	if includePolls {
		totalPolls := m.totalPolls
		avgPolls := float64(m.totalPolls) / float64(m.count)
		maxPolls := m.maxPolls
		totalToolCalls := m.totalToolCalls

		snap.TotalPolls = &totalPolls
		snap.AvgPolls = &avgPolls
		snap.MaxPolls = &maxPolls
		snap.TotalToolCalls = &totalToolCalls
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds:  time.Since(c.startTime).Seconds(),
		AssistantRuns:  snapshotOp(c.ops[OpAssistantRun], true),
		AgentTasks:     snapshotOp(c.ops[OpAgentTask], false),
		MarketSearches: snapshotOp(c.ops[OpMarketSearch], false),
		TrendsFetches:  snapshotOp(c.ops[OpTrendsFetch], false),
	}
}
