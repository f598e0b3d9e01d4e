package threading

import (
	"citycam/internal/threading/monitoring"
	"citycam/internal/threading/rendering"
)

// ThreadingComponents holds the worker-backed helpers the sandbox view uses
type ThreadingComponents struct {
	Projector          *rendering.Projector
	Markers            *rendering.MarkerBatch
	PerformanceMonitor *monitoring.PerformanceMonitor
}

// NewThreadingComponents creates and starts all threading components
func NewThreadingComponents() *ThreadingComponents {
	return &ThreadingComponents{
		Projector:          rendering.NewProjector(),
		Markers:            rendering.NewMarkerBatch(),
		PerformanceMonitor: monitoring.NewPerformanceMonitor(),
	}
}

// Shutdown stops the worker pool and clears counters
func (tc *ThreadingComponents) Shutdown() {
	if tc.Projector != nil {
		tc.Projector.Stop()
	}
	if tc.Markers != nil {
		tc.Markers.Clear()
	}
	if tc.PerformanceMonitor != nil {
		tc.PerformanceMonitor.Reset()
	}
}

// CheckPerformanceAlerts returns any performance warnings
func (tc *ThreadingComponents) CheckPerformanceAlerts() []monitoring.PerformanceAlert {
	if tc.PerformanceMonitor != nil {
		return tc.PerformanceMonitor.CheckPerformanceAlerts()
	}
	return nil
}
