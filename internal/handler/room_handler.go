package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hanok-stay/service-booking/internal/application"
	"github.com/hanok-stay/service-booking/pkg/response"
)

// RoomHandler serves public, read-only room availability.
type RoomHandler struct {
	service *application.BookingService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(service *application.BookingService) *RoomHandler {
	registerValidators()
	return &RoomHandler{service: service}
}

// RegisterRoutes registers room routes. They need no authentication.
func (h *RoomHandler) RegisterRoutes(r *gin.RouterGroup) {
	rooms := r.Group("/accommodations/:accommodationId/rooms")
	{
		rooms.GET("/:roomId/quote", h.Quote)
	}
}

// Quote handles GET /accommodations/:accommodationId/rooms/:roomId/quote.
func (h *RoomHandler) Quote(c *gin.Context) {
	accommodationID, ok := uuidParam(c, "accommodationId", "invalid accommodation ID")
	if !ok {
		return
	}
	roomID, ok := uuidParam(c, "roomId", "invalid room ID")
	if !ok {
		return
	}

	var req application.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.QuoteBooking(c.Request.Context(), accommodationID, roomID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
