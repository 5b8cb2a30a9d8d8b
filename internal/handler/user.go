package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxi/internal/domain"
	"taxi/internal/service"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	passengerService *service.PassengerService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(passengerService *service.PassengerService) *UserHandler {
	return &UserHandler{passengerService: passengerService}
}

// StartRequest is the HTTP request body for starting a chat session.
type StartRequest struct {
	Name string `json:"name"`
}

// SavePhoneRequest is the HTTP request body for sharing a phone number.
type SavePhoneRequest struct {
	Phone string `json:"phone"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Phone: u.Phone}
}

// Start handles POST /v1/users
func (h *UserHandler) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.passengerService.Start(c.Request.Context(), actorID(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// GetProfile handles GET /v1/users/:id
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, err := h.ownID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.passengerService.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// SavePhone handles PUT /v1/users/:id/phone
func (h *UserHandler) SavePhone(c *gin.Context) {
	id, err := h.ownID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req SavePhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.passengerService.SavePhone(c.Request.Context(), id, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// ownID returns the :id parameter when it matches the caller.
func (h *UserHandler) ownID(c *gin.Context) (int64, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return 0, err
	}
	if id != actorID(c) {
		return 0, errForbidden
	}
	return id, nil
}
