package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxi/internal/domain"
	"taxi/internal/service"
)

// AdminHandler handles operator requests. Routes are guarded by
// middleware.RequireAdmin.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// AddDriverRequest is the HTTP request body for registering a driver.
type AddDriverRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	AddedAt string `json:"added_at,omitempty"`
}

// StatsResponse is the HTTP response for order statistics.
type StatsResponse struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	resp := DriverResponse{ID: d.ID, Name: d.Name}
	if !d.AddedAt.IsZero() {
		resp.AddedAt = d.AddedAt.Format(time.RFC3339)
	}
	return resp
}

// AddDriver handles POST /v1/admin/drivers
func (h *AdminHandler) AddDriver(c *gin.Context) {
	var req AddDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.adminService.AddDriver(c.Request.Context(), req.ID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// RemoveDriver handles DELETE /v1/admin/drivers/:id
func (h *AdminHandler) RemoveDriver(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.adminService.RemoveDriver(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListDrivers handles GET /v1/admin/drivers
func (h *AdminHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.adminService.ListDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, toDriverResponse(d))
	}

	respondJSON(c, http.StatusOK, response)
}

// Stats handles GET /v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	byStatus := make(map[string]int64, len(domain.OrderStatuses))
	for _, status := range domain.OrderStatuses {
		byStatus[string(status)] = stats.Count(status)
	}

	respondJSON(c, http.StatusOK, StatsResponse{Total: stats.Total, ByStatus: byStatus})
}
