package api

import (
	"net/http"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/service"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	reservationService service.ReservationService
}

func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

type CreateReservationRequest struct {
	Kind        domain.ReservationKind `json:"kind" binding:"required,oneof=room visitor"`
	Resource    string                 `json:"resource"`
	Title       string                 `json:"title"`
	VisitorName string                 `json:"visitorName"`
	VisitorDoc  string                 `json:"visitorDoc"`
	Start       time.Time              `json:"start" binding:"required"`
	End         time.Time              `json:"end" binding:"required"`
}

// ListReservations godoc
// @Summary Reservations intersecting a time range
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param kind query string false "room or visitor; empty lists both"
// @Param from query string true "RFC3339 start"
// @Param to query string true "RFC3339 end"
// @Success 200 {object} gin.H "reservations"
// @Router /reservations [get]
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid from timestamp, expected RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid to timestamp, expected RFC3339")
		return
	}

	list, err := h.reservationService.List(c.Request.Context(), domain.ReservationKind(c.Query("kind")), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list})
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	r, err := h.reservationService.Create(c.Request.Context(), userID, service.ReservationRequest{
		Kind:        req.Kind,
		Resource:    req.Resource,
		Title:       req.Title,
		VisitorName: req.VisitorName,
		VisitorDoc:  req.VisitorDoc,
		Start:       req.Start,
		End:         req.End,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseObjectIDParam(c, "reservationId")
	if !ok {
		return
	}
	if err := h.reservationService.Cancel(c.Request.Context(), id, userID, role); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
