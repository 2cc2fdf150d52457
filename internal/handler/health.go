package handler

import (
	"net/http"
	"runtime"
	"time"
)

// HealthHandler reports process status, uptime, and memory usage.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler anchored to the current time.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status        string       `json:"status"`
	Timestamp     time.Time    `json:"timestamp"`
	UptimeSeconds float64      `json:"uptime_seconds"`
	Memory        MemoryStatus `json:"memory"`
}

// MemoryStatus is a snapshot of the process's memory usage in bytes.
type MemoryStatus struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

// Health handles health check requests. The relay has no required runtime
// dependencies, so status is always "ok" while the process is serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	JSON(w, http.StatusOK, HealthStatus{
		Status:        "ok",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Memory: MemoryStatus{
			Alloc:      mem.Alloc,
			TotalAlloc: mem.TotalAlloc,
			Sys:        mem.Sys,
			NumGC:      mem.NumGC,
		},
	})
}
