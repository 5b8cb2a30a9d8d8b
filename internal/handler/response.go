package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taxi/internal/domain"
	"taxi/internal/middleware"
	"taxi/internal/repository"
	"taxi/internal/service"
)

// errForbidden is returned when the actor acts on another user's resource.
var errForbidden = errors.New("forbidden")

// errInvalidID is returned for malformed path ids.
var errInvalidID = errors.New("invalid id")

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ActiveOrderResponse is returned with 409 when the passenger already has an order.
type ActiveOrderResponse struct {
	Error string         `json:"error"`
	Order *OrderResponse `json:"order,omitempty"`
}

// OrderResponse is the HTTP representation of an order.
type OrderResponse struct {
	ID          int64  `json:"id"`
	PassengerID int64  `json:"passenger_id"`
	Pickup      string `json:"pickup"`
	Destination string `json:"destination"`
	Status      string `json:"status"`
	DriverID    *int64 `json:"driver_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toOrderResponse(o *domain.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	return &OrderResponse{
		ID:          o.ID,
		PassengerID: o.PassengerID,
		Pickup:      o.Pickup,
		Destination: o.Destination,
		Status:      string(o.Status),
		DriverID:    o.DriverID,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339),
	}
}

func toOrderResponses(orders []*domain.Order) []*OrderResponse {
	response := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	return response
}

// respondError sends an error response with the appropriate HTTP status code.
// Storage faults are attached to the context for the access log and answered
// with a generic message.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(code, ErrorResponse{Error: "internal error"})
		return
	}

	var activeErr *service.ActiveOrderError
	if errors.As(err, &activeErr) {
		c.JSON(code, ActiveOrderResponse{Error: err.Error(), Order: toOrderResponse(activeErr.Order)})
		return
	}

	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNoActiveOrder),
		errors.Is(err, service.ErrDriverNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, errInvalidID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidPickup),
		errors.Is(err, service.ErrInvalidDestination):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrOrderUnavailable),
		errors.Is(err, service.ErrActiveOrderExists),
		errors.Is(err, service.ErrDriverExists),
		errors.Is(err, service.ErrPhoneRequired),
		errors.Is(err, domain.ErrGuardFailed):
		return http.StatusConflict

	// Forbidden errors
	case errors.Is(err, errForbidden),
		errors.Is(err, service.ErrNotDriver),
		errors.Is(err, service.ErrNotAdmin):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// actorID returns the caller id set by middleware.RequireActor.
func actorID(c *gin.Context) int64 {
	id, _ := middleware.ActorID(c)
	return id
}

// paramID parses a positive int64 path parameter.
func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
