package handlers

import (
	"net/http"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	service.Health
	Error string `json:"error,omitempty"`
}

// Health reports the number of holdings and the snapshot location. A SQLite
// snapshot that cannot be opened makes the service unhealthy.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with HealthResponse
// Error: 503 Service Unavailable with HealthResponse
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	health, err := h.systemService.CheckHealth(r.Context())
	if err != nil {
		health.Status = "unhealthy"
		response.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{Health: health, Error: err.Error()})
		return
	}

	response.RespondJSON(w, http.StatusOK, HealthResponse{Health: health})
}

// VersionResponse represents the version check response
type VersionResponse struct {
	AppVersion string `json:"app_version"`
}

// Version handles GET requests to retrieve the application version.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionResponse
func (h *SystemHandler) Version(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, VersionResponse{AppVersion: h.systemService.CheckVersion()})
}
