package api

import (
	"net/http"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves /api/v1/admin; every route sits behind RoleMiddleware(admin).
type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

type SetRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=admin employee"`
}

type AdjustPointsRequest struct {
	Amount int    `json:"amount" binding:"required"`
	Note   string `json:"note" binding:"required"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, MapUserToResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if err := h.adminService.SetRole(c.Request.Context(), actorID, userID, req.Role); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) AdjustPoints(c *gin.Context) {
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}
	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if err := h.adminService.AdjustPoints(c.Request.Context(), userID, req.Amount, req.Note); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
