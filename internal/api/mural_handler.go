package api

import (
	"net/http"
	"strconv"
	"time"

	"corpintranet/portal/internal/service"

	"github.com/gin-gonic/gin"
)

type MuralHandler struct {
	muralService service.MuralService
}

func NewMuralHandler(muralService service.MuralService) *MuralHandler {
	return &MuralHandler{muralService: muralService}
}

type CreatePostRequest struct {
	Content  string `json:"content"`
	ImageKey string `json:"imageKey"`
}

type UploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type LikeRequest struct {
	Liked *bool `json:"liked" binding:"required"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListPosts godoc
// @Summary Newest mural posts first
// @Tags Mural
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param before query string false "RFC3339 timestamp; only posts created earlier are returned"
// @Success 200 {object} gin.H "posts"
// @Router /mural/posts [get]
func (h *MuralHandler) ListPosts(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			abortWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	var before *time.Time
	if v := c.Query("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid before timestamp, expected RFC3339")
			return
		}
		before = &t
	}

	posts, err := h.muralService.ListPosts(c.Request.Context(), userID, limit, before)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *MuralHandler) CreatePost(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	post, err := h.muralService.CreatePost(c.Request.Context(), userID, req.Content, req.ImageKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// RequestUpload returns a presigned PUT URL; the key goes into CreatePost afterwards.
func (h *MuralHandler) RequestUpload(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	upload, err := h.muralService.RequestImageUpload(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

func (h *MuralHandler) SetLike(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseObjectIDParam(c, "postId")
	if !ok {
		return
	}
	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	post, err := h.muralService.SetLike(c.Request.Context(), postID, userID, *req.Liked)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *MuralHandler) AddComment(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseObjectIDParam(c, "postId")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	comment, err := h.muralService.AddComment(c.Request.Context(), postID, userID, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *MuralHandler) DeletePost(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseObjectIDParam(c, "postId")
	if !ok {
		return
	}
	if err := h.muralService.DeletePost(c.Request.Context(), postID, userID, role); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
