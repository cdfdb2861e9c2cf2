package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/safehaven/backend/internal/database"
	"github.com/safehaven/backend/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// PostHandlersTestSuite contains post endpoint tests
type PostHandlersTestSuite struct {
	suite.Suite
	env      *testEnv
	token    string
	testUser models.User
	baseTime time.Time
}

func (suite *PostHandlersTestSuite) SetupSuite() {
	env, err := newTestEnv()
	require.NoError(suite.T(), err)
	suite.env = env
	suite.baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *PostHandlersTestSuite) TearDownSuite() {
	database.Close(suite.env.db)
}

func (suite *PostHandlersTestSuite) SetupTest() {
	suite.env.reset()

	token, user, err := suite.env.registerUser("poster@example.com", "pw123456", "Test Poster")
	require.NoError(suite.T(), err)
	suite.token = token
	suite.testUser = user
}

func (suite *PostHandlersTestSuite) seedThreePosts() []models.Post {
	u := suite.testUser
	return []models.Post{
		suite.env.createPost(u.ID, u.Name, models.CategorySafety, "Oldest", "first post", suite.baseTime),
		suite.env.createPost(u.ID, u.Name, models.CategoryEvent, "Middle", "second post", suite.baseTime.Add(time.Hour)),
		suite.env.createPost(u.ID, u.Name, models.CategorySafety, "Newest", "third post", suite.baseTime.Add(2*time.Hour)),
	}
}

func (suite *PostHandlersTestSuite) TestListPostsOrdering() {
	t := suite.T()
	suite.seedThreePosts()

	w := suite.env.request("GET", "/api/posts", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 3)

	// Strictly newest first
	suite.Equal("Newest", posts[0].Title)
	suite.Equal("Middle", posts[1].Title)
	suite.Equal("Oldest", posts[2].Title)
	for i := 1; i < len(posts); i++ {
		suite.False(posts[i].CreatedAt.After(posts[i-1].CreatedAt))
	}
}

func (suite *PostHandlersTestSuite) TestListPostsCategoryFilter() {
	t := suite.T()
	suite.seedThreePosts()

	w := suite.env.request("GET", "/api/posts?category=safety", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	for _, post := range posts {
		suite.Equal(models.CategorySafety, post.Category)
	}
}

func (suite *PostHandlersTestSuite) TestListPostsAllSentinel() {
	t := suite.T()
	suite.seedThreePosts()

	all := suite.env.request("GET", "/api/posts?category=all", nil, "")
	unfiltered := suite.env.request("GET", "/api/posts", nil, "")

	suite.Equal(http.StatusOK, all.Code)
	suite.Equal(unfiltered.Body.String(), all.Body.String())

	var posts []models.Post
	require.NoError(t, json.Unmarshal(all.Body.Bytes(), &posts))
	suite.Len(posts, 3)
}

func (suite *PostHandlersTestSuite) TestListPostsFilterIsCaseSensitive() {
	t := suite.T()
	suite.seedThreePosts()

	w := suite.env.request("GET", "/api/posts?category=Safety", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	suite.Empty(posts)
}

func (suite *PostHandlersTestSuite) TestGetPostIncrementsViews() {
	t := suite.T()
	post := suite.env.createPost(suite.testUser.ID, suite.testUser.Name, models.CategoryEvent, "Block Party", "Block party Friday", suite.baseTime)

	// N reads increase the counter by exactly N, visible in each response
	for i := 1; i <= 5; i++ {
		w := suite.env.request("GET", fmt.Sprintf("/api/posts/%d", post.ID), nil, "")
		suite.Equal(http.StatusOK, w.Code)

		var got models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		suite.Equal(i, got.Views)
		suite.Equal("Block party Friday", got.Description)
	}
}

func (suite *PostHandlersTestSuite) TestGetPostNotFound() {
	w := suite.env.request("GET", "/api/posts/999999", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)

	// A read of a missing post must not leave a stray row behind
	var count int64
	suite.env.db.Model(&models.Post{}).Count(&count)
	suite.EqualValues(0, count)

	w = suite.env.request("GET", "/api/posts/not-a-number", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *PostHandlersTestSuite) TestCreatePost() {
	t := suite.T()

	w := suite.env.request("POST", "/api/posts", map[string]interface{}{
		"category":    "event",
		"title":       "Community BBQ",
		"description": "Saturday at noon",
		"latitude":    40.7128,
		"longitude":   -74.0060,
	}, suite.token)

	suite.Equal(http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	suite.NotZero(resp["id"])

	var post models.Post
	require.NoError(t, suite.env.db.First(&post, "id = ?", resp["id"]).Error)
	suite.Equal(suite.testUser.ID, post.UserID)
	suite.Equal(suite.testUser.Name, post.AuthorName)
	suite.Equal(models.CategoryEvent, post.Category)
	suite.Equal("Downtown", post.Neighborhood)
	suite.Equal(0, post.Views)
	suite.Equal(0, post.Helpful)
}

func (suite *PostHandlersTestSuite) TestCreatePostRequiresAuth() {
	w := suite.env.request("POST", "/api/posts", map[string]interface{}{
		"category":    "event",
		"description": "no token",
	}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *PostHandlersTestSuite) TestCreatePostRejectsMismatchedUserID() {
	otherID := suite.testUser.ID + 42
	w := suite.env.request("POST", "/api/posts", map[string]interface{}{
		"user_id":     otherID,
		"category":    "event",
		"description": "spoofed identity",
	}, suite.token)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *PostHandlersTestSuite) TestCreatePostValidation() {
	// Missing description
	w := suite.env.request("POST", "/api/posts", map[string]interface{}{
		"category": "event",
	}, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)

	// Missing category
	w = suite.env.request("POST", "/api/posts", map[string]interface{}{
		"description": "no category",
	}, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)

	// Unknown category
	w = suite.env.request("POST", "/api/posts", map[string]interface{}{
		"category":    "gossip",
		"description": "unknown category",
	}, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *PostHandlersTestSuite) TestMarkHelpful() {
	t := suite.T()
	post := suite.env.createPost(suite.testUser.ID, suite.testUser.Name, models.CategoryQuestion, "Plumber?", "any recommendations", suite.baseTime)

	for i := 1; i <= 3; i++ {
		w := suite.env.request("POST", fmt.Sprintf("/api/posts/%d/helpful", post.ID), nil, "")
		suite.Equal(http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		suite.EqualValues(i, resp["helpful"])
	}
}

func (suite *PostHandlersTestSuite) TestMarkHelpfulNotFound() {
	w := suite.env.request("POST", "/api/posts/999999/helpful", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

// Concurrent helpful marks must not lose updates; the increment is a single
// atomic statement at the store.
func (suite *PostHandlersTestSuite) TestMarkHelpfulConcurrent() {
	t := suite.T()
	post := suite.env.createPost(suite.testUser.ID, suite.testUser.Name, models.CategorySafety, "Lock up", "lock your cars", suite.baseTime)

	const clients = 20
	var wg sync.WaitGroup
	wg.Add(clients)
	for i := 0; i < clients; i++ {
		go func() {
			defer wg.Done()
			suite.env.request("POST", fmt.Sprintf("/api/posts/%d/helpful", post.ID), nil, "")
		}()
	}
	wg.Wait()

	var final models.Post
	require.NoError(t, suite.env.db.First(&final, "id = ?", post.ID).Error)
	suite.Equal(clients, final.Helpful)
}

func (suite *PostHandlersTestSuite) TestNearbyPosts() {
	t := suite.T()
	u := suite.testUser

	near := suite.env.createPost(u.ID, u.Name, models.CategorySafety, "Near", "close by", suite.baseTime)
	nearLat, nearLng := 40.7138, -74.0070
	suite.env.db.Model(&near).Updates(map[string]interface{}{"latitude": nearLat, "longitude": nearLng})

	far := suite.env.createPost(u.ID, u.Name, models.CategorySafety, "Far", "across the country", suite.baseTime)
	farLat, farLng := 34.0522, -118.2437
	suite.env.db.Model(&far).Updates(map[string]interface{}{"latitude": farLat, "longitude": farLng})

	// No coordinates; never part of nearby results
	suite.env.createPost(u.ID, u.Name, models.CategorySafety, "Nowhere", "no location", suite.baseTime)

	w := suite.env.request("GET", "/api/posts/nearby?lat=40.7128&lng=-74.0060&radius=5", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var results []struct {
		models.Post
		DistanceMiles float64 `json:"distance_miles"`
		DistanceLabel string  `json:"distance_label"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	suite.Equal("Near", results[0].Title)
	suite.Less(results[0].DistanceMiles, 5.0)
	suite.NotEmpty(results[0].DistanceLabel)
}

func (suite *PostHandlersTestSuite) TestNearbyPostsRequiresCoordinates() {
	w := suite.env.request("GET", "/api/posts/nearby", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestPostHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(PostHandlersTestSuite))
}
