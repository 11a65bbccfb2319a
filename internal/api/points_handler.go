package api

import (
	"net/http"
	"strconv"

	"corpintranet/portal/internal/service"

	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	pointsService service.PointsService
}

func NewPointsHandler(pointsService service.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

func queryLimit(c *gin.Context, def int) (int, bool) {
	v := c.Query("limit")
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 100 {
		abortWithError(c, http.StatusBadRequest, "Invalid limit, expected 1-100")
		return 0, false
	}
	return n, true
}

// MyHistory lists the caller's ledger entries, newest first.
func (h *PointsHandler) MyHistory(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c, 50)
	if !ok {
		return
	}
	entries, err := h.pointsService.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *PointsHandler) Leaderboard(c *gin.Context) {
	limit, ok := queryLimit(c, 10)
	if !ok {
		return
	}
	board, err := h.pointsService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": board})
}
