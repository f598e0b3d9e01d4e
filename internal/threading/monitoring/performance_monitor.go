package monitoring

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Section names accepted by ProfiledFunction.
const (
	SectionSimTick    = "sim_tick"
	SectionCamera     = "camera_update"
	SectionProjection = "projection"
	SectionDraw       = "draw"
)

// avgWeight is the smoothing factor of the running frame-time average.
const avgWeight = 0.1

// PerformanceMonitor tracks frame and per-section timings for the overlay
type PerformanceMonitor struct {
	// Frame metrics
	frameCount atomic.Uint64
	frameTime  atomic.Uint64 // nanoseconds

	// Section timings, last sample in nanoseconds
	simTickTime    atomic.Uint64
	cameraTime     atomic.Uint64
	projectionTime atomic.Uint64
	drawTime       atomic.Uint64

	// Scene metrics
	vehiclesLive    atomic.Int32
	pedestriansLive atomic.Int32
	surfaces        atomic.Int32

	mutex        sync.RWMutex
	avgFrameTime float64 // nanoseconds, exponentially smoothed
	startTime    time.Time

	enableDetailed bool
}

// NewPerformanceMonitor creates a new performance monitor
func NewPerformanceMonitor() *PerformanceMonitor {
	return &PerformanceMonitor{
		startTime:      time.Now(),
		enableDetailed: true,
	}
}

// FrameTimer measures one frame
type FrameTimer struct {
	monitor   *PerformanceMonitor
	startTime time.Time
}

// StartFrame begins frame timing
func (pm *PerformanceMonitor) StartFrame() *FrameTimer {
	return &FrameTimer{
		monitor:   pm,
		startTime: time.Now(),
	}
}

// EndFrame completes frame timing
func (ft *FrameTimer) EndFrame() {
	ft.monitor.recordFrame(time.Since(ft.startTime))
}

func (pm *PerformanceMonitor) recordFrame(d time.Duration) {
	ns := uint64(d.Nanoseconds())
	pm.frameTime.Store(ns)
	count := pm.frameCount.Add(1)

	pm.mutex.Lock()
	if pm.enableDetailed {
		if count == 1 {
			pm.avgFrameTime = float64(ns)
		} else {
			pm.avgFrameTime += (float64(ns) - pm.avgFrameTime) * avgWeight
		}
	}
	pm.mutex.Unlock()
}

// ProfiledFunction runs fn and records its duration under name. Unknown names
// are timed but not stored.
func (pm *PerformanceMonitor) ProfiledFunction(name string, fn func()) time.Duration {
	start := time.Now()
	fn()
	duration := time.Since(start)

	ns := uint64(duration.Nanoseconds())
	switch name {
	case SectionSimTick:
		pm.simTickTime.Store(ns)
	case SectionCamera:
		pm.cameraTime.Store(ns)
	case SectionProjection:
		pm.projectionTime.Store(ns)
	case SectionDraw:
		pm.drawTime.Store(ns)
	}

	return duration
}

// UpdateSceneMetrics records what the city currently holds.
func (pm *PerformanceMonitor) UpdateSceneMetrics(vehicles, pedestrians, surfaces int) {
	pm.vehiclesLive.Store(int32(vehicles))
	pm.pedestriansLive.Store(int32(pedestrians))
	pm.surfaces.Store(int32(surfaces))
}

// SceneMetrics is the snapshot shown in the overlay.
type SceneMetrics struct {
	FramesPerSecond float64
	AvgFrameMs      float64
	SimTickMs       float64
	CameraMs        float64
	ProjectionMs    float64
	DrawMs          float64
	Vehicles        int
	Pedestrians     int
	MemoryUsageMB   uint64
}

// GetCurrentMetrics returns current performance metrics
func (pm *PerformanceMonitor) GetCurrentMetrics() SceneMetrics {
	pm.mutex.RLock()
	avg := pm.avgFrameTime
	pm.mutex.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return SceneMetrics{
		FramesPerSecond: fps(pm.frameTime.Load()),
		AvgFrameMs:      avg / 1e6,
		SimTickMs:       ms(pm.simTickTime.Load()),
		CameraMs:        ms(pm.cameraTime.Load()),
		ProjectionMs:    ms(pm.projectionTime.Load()),
		DrawMs:          ms(pm.drawTime.Load()),
		Vehicles:        int(pm.vehiclesLive.Load()),
		Pedestrians:     int(pm.pedestriansLive.Load()),
		MemoryUsageMB:   memStats.Alloc / 1024 / 1024,
	}
}

// GetDetailedStats returns detailed performance statistics, keyed for logging
func (pm *PerformanceMonitor) GetDetailedStats() map[string]interface{} {
	pm.mutex.RLock()
	avg := pm.avgFrameTime
	start := pm.startTime
	pm.mutex.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return map[string]interface{}{
		"uptime_seconds":        time.Since(start).Seconds(),
		"frame_count":           pm.frameCount.Load(),
		"avg_frame_time_ms":     avg / 1e6,
		"last_frame_time_ms":    ms(pm.frameTime.Load()),
		"last_sim_tick_ms":      ms(pm.simTickTime.Load()),
		"last_camera_update_ms": ms(pm.cameraTime.Load()),
		"last_projection_ms":    ms(pm.projectionTime.Load()),
		"last_draw_ms":          ms(pm.drawTime.Load()),
		"current_fps":           fps(pm.frameTime.Load()),
		"vehicles_live":         pm.vehiclesLive.Load(),
		"pedestrians_live":      pm.pedestriansLive.Load(),
		"surfaces":              pm.surfaces.Load(),
		"memory_alloc_mb":       memStats.Alloc / 1024 / 1024,
		"memory_sys_mb":         memStats.Sys / 1024 / 1024,
		"gc_cycles":             memStats.NumGC,
		"goroutines":            runtime.NumGoroutine(),
	}
}

// PerformanceAlert represents a performance warning
type PerformanceAlert struct {
	Type      string
	Message   string
	Value     float64
	Threshold float64
	Timestamp time.Time
}

// Alert thresholds.
const (
	lowFPSThreshold     = 30
	slowCameraThreshold = 2.0 // milliseconds
)

// CheckPerformanceAlerts checks for performance issues and returns alerts
func (pm *PerformanceMonitor) CheckPerformanceAlerts() []PerformanceAlert {
	alerts := make([]PerformanceAlert, 0)
	now := time.Now()

	if frameTime := pm.frameTime.Load(); frameTime > 0 {
		if f := fps(frameTime); f < lowFPSThreshold {
			alerts = append(alerts, PerformanceAlert{
				Type:      "low_fps",
				Message:   "Frame rate is below 30 FPS",
				Value:     f,
				Threshold: lowFPSThreshold,
				Timestamp: now,
			})
		}
	}

	// The camera update runs every frame on the main goroutine; a slow one
	// usually means a degenerate ray cast or entity scan.
	if c := ms(pm.cameraTime.Load()); c > slowCameraThreshold {
		alerts = append(alerts, PerformanceAlert{
			Type:      "slow_camera",
			Message:   "Camera update took longer than 2ms",
			Value:     c,
			Threshold: slowCameraThreshold,
			Timestamp: now,
		})
	}

	return alerts
}

// EnableDetailedLogging turns the running average on or off
func (pm *PerformanceMonitor) EnableDetailedLogging(enabled bool) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.enableDetailed = enabled
}

// Reset resets all performance counters
func (pm *PerformanceMonitor) Reset() {
	pm.frameCount.Store(0)
	pm.frameTime.Store(0)
	pm.simTickTime.Store(0)
	pm.cameraTime.Store(0)
	pm.projectionTime.Store(0)
	pm.drawTime.Store(0)
	pm.vehiclesLive.Store(0)
	pm.pedestriansLive.Store(0)
	pm.surfaces.Store(0)

	pm.mutex.Lock()
	pm.avgFrameTime = 0
	pm.startTime = time.Now()
	pm.mutex.Unlock()
}

func fps(frameNanos uint64) float64 {
	if frameNanos == 0 {
		return 0
	}
	return 1e9 / float64(frameNanos)
}

func ms(nanos uint64) float64 {
	return float64(nanos) / 1e6
}
