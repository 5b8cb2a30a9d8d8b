package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxi/internal/service"
)

// OrderHandler handles passenger-facing order requests.
type OrderHandler struct {
	passengerService *service.PassengerService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(passengerService *service.PassengerService) *OrderHandler {
	return &OrderHandler{passengerService: passengerService}
}

// CreateOrderRequest is the HTTP request body for requesting a ride.
type CreateOrderRequest struct {
	Pickup      string `json:"pickup"`
	Destination string `json:"destination"`
}

// CreateOrder handles POST /v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.passengerService.RequestRide(c.Request.Context(), service.CreateOrderRequest{
		PassengerID: actorID(c),
		Pickup:      req.Pickup,
		Destination: req.Destination,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toOrderResponse(order))
}

// GetActive handles GET /v1/orders/active
func (h *OrderHandler) GetActive(c *gin.Context) {
	order, err := h.passengerService.ActiveOrder(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := h.passengerService.GetOrder(c.Request.Context(), orderID, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}
