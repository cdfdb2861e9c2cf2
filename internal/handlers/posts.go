package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/safehaven/backend/internal/geo"
	"github.com/safehaven/backend/internal/logger"
	"github.com/safehaven/backend/internal/metrics"
	"github.com/safehaven/backend/internal/models"
	"github.com/safehaven/backend/internal/util"
	"gorm.io/gorm"
)

// ListPosts returns all posts, optionally filtered by category.
// GET /api/posts?category=
func (h *Handlers) ListPosts(c *gin.Context) {
	category := c.Query("category")

	query := h.db.Model(&models.Post{}).Order("created_at DESC, id DESC")
	if category != "" && category != "all" {
		// Exact, case-sensitive match
		query = query.Where("category = ?", category)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		logger.ErrorWithFields("Failed to list posts", err)
		util.RespondInternalError(c, "failed to get posts")
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post and counts the view. The existence check
// happens first; a view of a missing post is a plain 404, not a stray
// increment.
// GET /api/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	id, err := util.ParseUintParam(c.Param("id"))
	if err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	// Single atomic statement; concurrent views never lose updates
	result := h.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if result.Error != nil {
		logger.ErrorWithFields("Failed to increment view count", result.Error)
		util.RespondInternalError(c, "failed to get post")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "post")
		return
	}

	var post models.Post
	if err := h.db.First(&post, "id = ?", id).Error; err != nil {
		logger.ErrorWithFields("Failed to load post", err)
		util.RespondInternalError(c, "failed to get post")
		return
	}

	metrics.Get().PostViewsTotal.Inc()
	c.JSON(http.StatusOK, post)
}

// CreatePost creates a community update. The acting user and author name come
// from the verified token; a body user_id that contradicts it is rejected.
// POST /api/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		UserID       *uint    `json:"user_id"`
		Category     string   `json:"category" binding:"required"`
		Title        string   `json:"title"`
		Description  string   `json:"description" binding:"required"`
		Neighborhood string   `json:"neighborhood"`
		Latitude     *float64 `json:"latitude"`
		Longitude    *float64 `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "", "missing required fields")
		return
	}

	if req.UserID != nil && *req.UserID != user.ID {
		util.RespondForbidden(c, "user_id does not match authenticated user")
		return
	}

	category := models.Category(req.Category)
	if !category.IsValid() {
		util.RespondValidationError(c, "category", "unknown category")
		return
	}

	neighborhood := req.Neighborhood
	if neighborhood == "" {
		neighborhood = models.DefaultNeighborhood
	}

	post := models.Post{
		UserID:       user.ID,
		AuthorName:   user.Name,
		Category:     category,
		Title:        req.Title,
		Description:  req.Description,
		Neighborhood: neighborhood,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}

	if err := h.db.Create(&post).Error; err != nil {
		logger.ErrorWithFields("Failed to create post", err)
		util.RespondInternalError(c, "failed to create post")
		return
	}

	metrics.Get().PostsCreatedTotal.WithLabelValues(string(category)).Inc()
	c.JSON(http.StatusOK, gin.H{
		"id":      post.ID,
		"message": "Post created successfully",
	})
}

// MarkHelpful increments the helpful counter and returns the new count.
// Repeated calls keep incrementing; there is no per-user dedupe.
// POST /api/posts/:id/helpful
func (h *Handlers) MarkHelpful(c *gin.Context) {
	id, err := util.ParseUintParam(c.Param("id"))
	if err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	result := h.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("helpful", gorm.Expr("helpful + 1"))
	if result.Error != nil {
		logger.ErrorWithFields("Failed to increment helpful count", result.Error)
		util.RespondInternalError(c, "failed to mark post helpful")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "post")
		return
	}

	var post models.Post
	if err := h.db.Select("helpful").First(&post, "id = ?", id).Error; err != nil {
		logger.ErrorWithFields("Failed to load helpful count", err)
		util.RespondInternalError(c, "failed to mark post helpful")
		return
	}

	metrics.Get().HelpfulMarksTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"helpful": post.Helpful})
}

// nearbyPost is a post annotated with its distance from the query point.
type nearbyPost struct {
	models.Post
	DistanceMiles float64 `json:"distance_miles"`
	DistanceLabel string  `json:"distance_label"`
}

// NearbyPosts returns posts with coordinates within radius miles of a point,
// closest first.
// GET /api/posts/nearby?lat=&lng=&radius=
func (h *Handlers) NearbyPosts(c *gin.Context) {
	latStr := c.Query("lat")
	lngStr := c.Query("lng")
	if latStr == "" || lngStr == "" {
		util.RespondValidationError(c, "lat", "lat and lng are required")
		return
	}

	lat := util.ParseFloat(latStr, 0)
	lng := util.ParseFloat(lngStr, 0)
	radius := util.ParseFloat(c.Query("radius"), 5)
	if radius <= 0 {
		radius = 5
	}

	var posts []models.Post
	if err := h.db.
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		logger.ErrorWithFields("Failed to list posts for nearby query", err)
		util.RespondInternalError(c, "failed to get nearby posts")
		return
	}

	nearby := make([]nearbyPost, 0, len(posts))
	for _, post := range posts {
		d := geo.Distance(lat, lng, *post.Latitude, *post.Longitude)
		if d > radius {
			continue
		}
		nearby = append(nearby, nearbyPost{
			Post:          post,
			DistanceMiles: d,
			DistanceLabel: geo.FormatDistance(d),
		})
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceMiles < nearby[j].DistanceMiles
	})

	c.JSON(http.StatusOK, nearby)
}
