package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safehaven/backend/internal/auth"
	"github.com/safehaven/backend/internal/database"
	"github.com/safehaven/backend/internal/logger"
	"github.com/safehaven/backend/internal/models"
	"gorm.io/gorm"
)

// testEnv wires a handlers instance against an in-memory store with the full
// route table, mirroring cmd/server.
type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	auth    *auth.Service
	handler *Handlers
}

func newTestEnv() (*testEnv, error) {
	logger.InitializeForTests()

	db, err := database.OpenForTests()
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(db, []byte("test-secret"), 7*24*time.Hour)
	h := NewHandlers(db, authService)

	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", h.AuthMiddleware(), h.Me)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", h.ListPosts)
			posts.GET("/nearby", h.NearbyPosts)
			posts.GET("/:id", h.GetPost)
			posts.POST("", h.AuthMiddleware(), h.CreatePost)
			posts.POST("/:id/helpful", h.MarkHelpful)

			posts.GET("/:id/comments", h.ListComments)
			posts.POST("/:id/comments", h.AuthMiddleware(), h.CreateComment)

			posts.GET("/:id/images", h.ListImages)
			posts.POST("/:id/images", h.AuthMiddleware(), h.AddImage)
		}
	}

	return &testEnv{
		db:      db,
		router:  r,
		auth:    authService,
		handler: h,
	}, nil
}

// reset clears every table between tests
func (e *testEnv) reset() {
	e.db.Where("1 = 1").Delete(&models.Comment{})
	e.db.Where("1 = 1").Delete(&models.Image{})
	e.db.Where("1 = 1").Delete(&models.Post{})
	e.db.Where("1 = 1").Delete(&models.User{})
}

// registerUser creates an account through the API and returns its token and user.
func (e *testEnv) registerUser(email, password, name string) (string, models.User, error) {
	w := e.request("POST", "/api/auth/register", map[string]interface{}{
		"email":    email,
		"password": password,
		"name":     name,
	}, "")
	if w.Code != http.StatusOK {
		return "", models.User{}, fmt.Errorf("register returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		return "", models.User{}, err
	}
	return resp.Token, resp.User, nil
}

// createPost inserts a post directly into the store for read-path tests.
func (e *testEnv) createPost(userID uint, authorName string, category models.Category, title, description string, createdAt time.Time) models.Post {
	post := models.Post{
		UserID:       userID,
		AuthorName:   authorName,
		Category:     category,
		Title:        title,
		Description:  description,
		Neighborhood: models.DefaultNeighborhood,
		CreatedAt:    createdAt,
	}
	e.db.Create(&post)
	return post
}

// request performs an HTTP request against the test router.
func (e *testEnv) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
