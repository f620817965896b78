package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/mcdev12/clearpoints/go/internal/game/events"
)

// EventPublisher is anything that accepts game events
type EventPublisher interface {
	Publish(ctx context.Context, event *events.GameEvent) error
}

// MetricsCollector defines the interface for collecting publish metrics
type MetricsCollector interface {
	RecordEventProcessed(eventType events.EventType, success bool, duration time.Duration)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordEventProcessed(eventType events.EventType, success bool, duration time.Duration) {
}

// MetricPublisher wraps an EventPublisher with metrics collection
type MetricPublisher struct {
	publisher EventPublisher
	metrics   MetricsCollector
}

func NewMetricPublisher(publisher EventPublisher, metrics MetricsCollector) *MetricPublisher {
	return &MetricPublisher{
		publisher: publisher,
		metrics:   metrics,
	}
}

func (p *MetricPublisher) Publish(ctx context.Context, event *events.GameEvent) error {
	start := time.Now()
	err := p.publisher.Publish(ctx, event)
	p.metrics.RecordEventProcessed(event.Type, err == nil, time.Since(start))
	return err
}

// EventStats is a point-in-time copy of the counters kept by Stats
type EventStats struct {
	Processed     uint64                      `json:"processed"`
	Failed        uint64                      `json:"failed"`
	ByType        map[events.EventType]uint64 `json:"by_type"`
	LastEventTime time.Time                   `json:"last_event_time"`
	TotalLatency  time.Duration               `json:"-"`
}

// Stats is an in-memory MetricsCollector
type Stats struct {
	mu    sync.Mutex
	stats EventStats
}

func NewStats() *Stats {
	return &Stats{stats: EventStats{ByType: make(map[events.EventType]uint64)}}
}

func (s *Stats) RecordEventProcessed(eventType events.EventType, success bool, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Processed++
	if !success {
		s.stats.Failed++
	}
	s.stats.ByType[eventType]++
	s.stats.TotalLatency += duration
	s.stats.LastEventTime = time.Now()
}

// Snapshot returns a copy of the current counters
func (s *Stats) Snapshot() EventStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.ByType = make(map[events.EventType]uint64, len(s.stats.ByType))
	for k, v := range s.stats.ByType {
		out.ByType[k] = v
	}
	return out
}
