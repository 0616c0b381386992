package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// EngineInfo describes the active engine parameters
type EngineInfo struct {
	StandardRates       []string `json:"standard_rates"`
	SimilarityThreshold float64  `json:"similarity_threshold"`
	SimilarityAlgorithm string   `json:"similarity_algorithm"`
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	engine    EngineInfo
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, engine EngineInfo) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		engine:    engine,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	GoVersion string     `json:"go_version"`
	Uptime    string     `json:"uptime"`
	Engine    EngineInfo `json:"engine"`
}

// GetSystemInfo returns the service version, uptime and engine parameters
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Engine:    h.engine,
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping is a liveness probe
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
