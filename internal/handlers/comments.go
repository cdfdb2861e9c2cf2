package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safehaven/backend/internal/logger"
	"github.com/safehaven/backend/internal/metrics"
	"github.com/safehaven/backend/internal/models"
	"github.com/safehaven/backend/internal/util"
)

// ListComments returns the comments on a post, most recent first.
// GET /api/posts/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
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

	var comments []models.Comment
	if err := h.db.
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error; err != nil {
		logger.ErrorWithFields("Failed to list comments", err)
		util.RespondInternalError(c, "failed to get comments")
		return
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment adds a comment to an existing post. Author identity comes from
// the verified token.
// POST /api/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	postID, err := util.ParseUintParam(c.Param("id"))
	if err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var req struct {
		UserID *uint  `json:"user_id"`
		Text   string `json:"text" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "text", "missing required fields")
		return
	}

	if req.UserID != nil && *req.UserID != user.ID {
		util.RespondForbidden(c, "user_id does not match authenticated user")
		return
	}

	var post models.Post
	if err := h.db.Select("id").First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	comment := models.Comment{
		PostID:     postID,
		UserID:     user.ID,
		AuthorName: user.Name,
		Text:       req.Text,
	}

	if err := h.db.Create(&comment).Error; err != nil {
		logger.ErrorWithFields("Failed to create comment", err)
		util.RespondInternalError(c, "failed to add comment")
		return
	}

	metrics.Get().CommentsCreatedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"id":      comment.ID,
		"message": "Comment added successfully",
	})
}
