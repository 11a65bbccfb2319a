package api

import (
	"net/http"
	"strconv"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/exchange"
	"corpintranet/portal/internal/service"

	"github.com/gin-gonic/gin"
)

type CafeteriaHandler struct {
	cafeteriaService service.CafeteriaService
}

func NewCafeteriaHandler(cafeteriaService service.CafeteriaService) *CafeteriaHandler {
	return &CafeteriaHandler{cafeteriaService: cafeteriaService}
}

// --- DTOs ---

type MonthPreviewRequest struct {
	Year    int                  `json:"year" binding:"required"`
	Month   int                  `json:"month" binding:"required,min=1,max=12"`
	Pending []exchange.Selection `json:"pending"`
}

type BulkPlanRequest struct {
	Year    int    `json:"year" binding:"required"`
	Month   int    `json:"month" binding:"required,min=1,max=12"`
	Protein string `json:"protein" binding:"required"`
}

type SubmitExchangesRequest struct {
	Selections []exchange.Selection `json:"selections" binding:"required"`
}

type ImportMenuRequest struct {
	Days []domain.MenuDay `json:"days" binding:"required"`
}

// parseYearMonth reads ?year=&month=, defaulting to the current month on the
// cafeteria clock.
func parseYearMonth(c *gin.Context, clock func() time.Time) (int, time.Month, bool) {
	now := clock()
	year, month := now.Year(), int(now.Month())
	var err error
	if v := c.Query("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid year")
			return 0, 0, false
		}
	}
	if v := c.Query("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil || month < 1 || month > 12 {
			abortWithError(c, http.StatusBadRequest, "Invalid month")
			return 0, 0, false
		}
	}
	return year, time.Month(month), true
}

// Proteins lists the labels an employee may exchange to.
func (h *CafeteriaHandler) Proteins(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"proteins": domain.Proteins})
}

// GetMonth godoc
// @Summary Exchange calendar for one month
// @Tags Cafeteria
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year (defaults to current)"
// @Param month query int false "Month 1-12 (defaults to current)"
// @Success 200 {object} service.MonthView
// @Router /cafeteria/month [get]
func (h *CafeteriaHandler) GetMonth(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	year, month, ok := parseYearMonth(c, h.cafeteriaService.Now)
	if !ok {
		return
	}
	view, err := h.cafeteriaService.GetMonth(c.Request.Context(), userID, year, month, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PreviewMonth resolves the month with the caller's unsaved selections applied.
func (h *CafeteriaHandler) PreviewMonth(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req MonthPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	view, err := h.cafeteriaService.GetMonth(c.Request.Context(), userID, req.Year, time.Month(req.Month), req.Pending)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PlanBulkApply godoc
// @Summary Selections for applying one protein to every remaining day
// @Tags Cafeteria
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkPlanRequest true "Month and target protein"
// @Success 200 {object} gin.H "selections, empty when nothing is eligible"
// @Router /cafeteria/bulk-plan [post]
func (h *CafeteriaHandler) PlanBulkApply(c *gin.Context) {
	if _, _, ok := currentUser(c); !ok {
		return
	}
	var req BulkPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	selections, err := h.cafeteriaService.PlanBulkApply(c.Request.Context(), req.Year, time.Month(req.Month), domain.Protein(req.Protein))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selections": selections})
}

// Submit godoc
// @Summary Save pending exchanges
// @Description Persists every submittable selection; the rest come back under "rejected" with a reason.
// @Tags Cafeteria
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitExchangesRequest true "Pending selections"
// @Success 200 {object} service.SubmitResult
// @Router /cafeteria/exchanges [post]
func (h *CafeteriaHandler) Submit(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req SubmitExchangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	result, err := h.cafeteriaService.Submit(c.Request.Context(), userID, req.Selections)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ImportMenu is the admin upload of menu days.
func (h *CafeteriaHandler) ImportMenu(c *gin.Context) {
	var req ImportMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	n, err := h.cafeteriaService.ImportMenu(c.Request.Context(), req.Days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(req.Days), "changed": n})
}

func (h *CafeteriaHandler) Tally(c *gin.Context) {
	year, month, ok := parseYearMonth(c, h.cafeteriaService.Now)
	if !ok {
		return
	}
	tally, err := h.cafeteriaService.Tally(c.Request.Context(), year, month)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tally": tally})
}
