package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taxi/internal/domain"
	"taxi/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// ListNew handles GET /v1/driver/orders
func (h *DriverHandler) ListNew(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	orders, err := h.driverService.NewOrders(c.Request.Context(), actorID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponses(orders))
}

// GetActive handles GET /v1/driver/orders/active
func (h *DriverHandler) GetActive(c *gin.Context) {
	order, err := h.driverService.ActiveOrder(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// Accept handles POST /v1/driver/orders/:id/accept
func (h *DriverHandler) Accept(c *gin.Context) {
	h.transition(c, h.driverService.Accept)
}

// Arrive handles POST /v1/driver/orders/:id/arrive
func (h *DriverHandler) Arrive(c *gin.Context) {
	h.transition(c, h.driverService.MarkArrived)
}

// Complete handles POST /v1/driver/orders/:id/complete
func (h *DriverHandler) Complete(c *gin.Context) {
	h.transition(c, h.driverService.Complete)
}

func (h *DriverHandler) transition(c *gin.Context, apply func(context.Context, int64, int64) (*domain.Order, error)) {
	orderID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := apply(c.Request.Context(), orderID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}
