package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hanok-stay/service-booking/internal/application"
	"github.com/hanok-stay/service-booking/pkg/auth"
	"github.com/hanok-stay/service-booking/pkg/middleware"
	"github.com/hanok-stay/service-booking/pkg/response"
)

// HostBookingHandler handles host-facing booking requests.
type HostBookingHandler struct {
	service *application.BookingService
}

// NewHostBookingHandler creates a new HostBookingHandler.
func NewHostBookingHandler(service *application.BookingService) *HostBookingHandler {
	registerValidators()
	return &HostBookingHandler{service: service}
}

// RegisterRoutes registers host booking routes.
func (h *HostBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	host := r.Group("/host/bookings")
	host.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleHost))
	{
		host.GET("", h.ListBookingsOnDate)
		host.PATCH("/:bookingId", h.Respond)
		host.POST("/:bookingId/check-in", h.advance(application.StayActionCheckIn))
		host.POST("/:bookingId/check-out", h.advance(application.StayActionCheckOut))
		host.POST("/:bookingId/complete", h.advance(application.StayActionComplete))
		host.POST("/:bookingId/no-show", h.advance(application.StayActionNoShow))
	}
}

// Respond handles PATCH /host/bookings/:bookingId with {"action": "accept"|"cancelled"}.
func (h *HostBookingHandler) Respond(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookingID, ok := uuidParam(c, "bookingId", "invalid booking ID")
	if !ok {
		return
	}

	var req application.HostRespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.HostRespondToBooking(c.Request.Context(), bookingID, hostID, req.Action)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// advance returns a handler for one stay progress command.
func (h *HostBookingHandler) advance(action application.StayAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID, ok := middleware.GetUserID(c)
		if !ok {
			response.Unauthorized(c, "unauthorized")
			return
		}

		bookingID, ok := uuidParam(c, "bookingId", "invalid booking ID")
		if !ok {
			return
		}

		result, err := h.service.HostAdvanceBooking(c.Request.Context(), bookingID, hostID, string(action))
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Success(c, result)
	}
}

// ListBookingsOnDate handles GET /host/bookings?room_id=&date=.
func (h *HostBookingHandler) ListBookingsOnDate(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var q application.HostBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.GetHostBookingsOnDate(c.Request.Context(), hostID, uuid.MustParse(q.RoomID), q.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
