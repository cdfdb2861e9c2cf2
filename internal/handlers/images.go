package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safehaven/backend/internal/logger"
	"github.com/safehaven/backend/internal/models"
	"github.com/safehaven/backend/internal/util"
)

// ListImages returns the image attachments for a post.
// GET /api/posts/:id/images
func (h *Handlers) ListImages(c *gin.Context) {
	postID, err := util.ParseUintParam(c.Param("id"))
	if err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var post models.Post
	if err := h.db.Select("id").First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var images []models.Image
	if err := h.db.Where("post_id = ?", postID).Order("id ASC").Find(&images).Error; err != nil {
		logger.ErrorWithFields("Failed to list images", err)
		util.RespondInternalError(c, "failed to get images")
		return
	}

	c.JSON(http.StatusOK, images)
}

// AddImage attaches an image URL to an existing post. Only the post owner may
// attach images.
// POST /api/posts/:id/images
func (h *Handlers) AddImage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID, err := util.ParseUintParam(c.Param("id"))
	if err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var req struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "url", "a valid image url is required")
		return
	}

	var post models.Post
	if err := h.db.Select("id, user_id").First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	if post.UserID != userID {
		util.RespondForbidden(c, "only the post author can attach images")
		return
	}

	image := models.Image{
		PostID: postID,
		URL:    req.URL,
	}

	if err := h.db.Create(&image).Error; err != nil {
		logger.ErrorWithFields("Failed to attach image", err)
		util.RespondInternalError(c, "failed to attach image")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      image.ID,
		"message": "Image attached successfully",
	})
}
