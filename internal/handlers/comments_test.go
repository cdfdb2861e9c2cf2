package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/safehaven/backend/internal/database"
	"github.com/safehaven/backend/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// CommentHandlersTestSuite contains comment endpoint tests
type CommentHandlersTestSuite struct {
	suite.Suite
	env      *testEnv
	token    string
	testUser models.User
	post     models.Post
}

func (suite *CommentHandlersTestSuite) SetupSuite() {
	env, err := newTestEnv()
	require.NoError(suite.T(), err)
	suite.env = env
}

func (suite *CommentHandlersTestSuite) TearDownSuite() {
	database.Close(suite.env.db)
}

func (suite *CommentHandlersTestSuite) SetupTest() {
	suite.env.reset()

	token, user, err := suite.env.registerUser("commenter@example.com", "pw123456", "Test Commenter")
	require.NoError(suite.T(), err)
	suite.token = token
	suite.testUser = user

	suite.post = suite.env.createPost(user.ID, user.Name, models.CategoryQuestion, "Plumber?", "looking for a plumber", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func (suite *CommentHandlersTestSuite) commentsPath() string {
	return fmt.Sprintf("/api/posts/%d/comments", suite.post.ID)
}

func (suite *CommentHandlersTestSuite) TestCreateComment() {
	t := suite.T()

	w := suite.env.request("POST", suite.commentsPath(), map[string]interface{}{
		"text": "Try Joe's Plumbing on 5th",
	}, suite.token)
	suite.Equal(http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	suite.NotZero(resp["id"])

	var comment models.Comment
	require.NoError(t, suite.env.db.First(&comment, "id = ?", resp["id"]).Error)
	suite.Equal(suite.post.ID, comment.PostID)
	suite.Equal(suite.testUser.ID, comment.UserID)
	suite.Equal(suite.testUser.Name, comment.AuthorName)
	suite.Equal("Try Joe's Plumbing on 5th", comment.Text)
}

func (suite *CommentHandlersTestSuite) TestCreateCommentRequiresAuth() {
	w := suite.env.request("POST", suite.commentsPath(), map[string]interface{}{
		"text": "anonymous",
	}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *CommentHandlersTestSuite) TestCreateCommentRejectsMismatchedUserID() {
	otherID := suite.testUser.ID + 42
	w := suite.env.request("POST", suite.commentsPath(), map[string]interface{}{
		"user_id": otherID,
		"text":    "spoofed identity",
	}, suite.token)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *CommentHandlersTestSuite) TestCreateCommentValidation() {
	// Missing text
	w := suite.env.request("POST", suite.commentsPath(), map[string]interface{}{}, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)

	// Empty text
	w = suite.env.request("POST", suite.commentsPath(), map[string]interface{}{
		"text": "",
	}, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)

	// Over the length cap
	w = suite.env.request("POST", suite.commentsPath(), map[string]interface{}{
		"text": strings.Repeat("a", 2001),
	}, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *CommentHandlersTestSuite) TestCreateCommentMissingPost() {
	w := suite.env.request("POST", "/api/posts/999999/comments", map[string]interface{}{
		"text": "nobody will read this",
	}, suite.token)
	suite.Equal(http.StatusNotFound, w.Code)

	var count int64
	suite.env.db.Model(&models.Comment{}).Count(&count)
	suite.EqualValues(0, count)
}

func (suite *CommentHandlersTestSuite) TestListCommentsNewestFirst() {
	t := suite.T()

	for _, text := range []string{"first", "second", "third"} {
		w := suite.env.request("POST", suite.commentsPath(), map[string]interface{}{
			"text": text,
		}, suite.token)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := suite.env.request("GET", suite.commentsPath(), nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var comments []models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 3)

	// Newest first; equal timestamps fall back to id
	suite.Equal("third", comments[0].Text)
	suite.Equal("second", comments[1].Text)
	suite.Equal("first", comments[2].Text)
}

func (suite *CommentHandlersTestSuite) TestListCommentsScopedToPost() {
	t := suite.T()

	other := suite.env.createPost(suite.testUser.ID, suite.testUser.Name, models.CategoryEvent, "BBQ", "community bbq", time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC))

	w := suite.env.request("POST", suite.commentsPath(), map[string]interface{}{
		"text": "on the question",
	}, suite.token)
	require.Equal(t, http.StatusOK, w.Code)

	w = suite.env.request("POST", fmt.Sprintf("/api/posts/%d/comments", other.ID), map[string]interface{}{
		"text": "on the bbq",
	}, suite.token)
	require.Equal(t, http.StatusOK, w.Code)

	w = suite.env.request("GET", suite.commentsPath(), nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var comments []models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	suite.Equal("on the question", comments[0].Text)
}

func (suite *CommentHandlersTestSuite) TestListCommentsMissingPost() {
	w := suite.env.request("GET", "/api/posts/999999/comments", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *CommentHandlersTestSuite) TestListCommentsEmpty() {
	t := suite.T()

	w := suite.env.request("GET", suite.commentsPath(), nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var comments []models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	suite.Empty(comments)
}

func TestCommentHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(CommentHandlersTestSuite))
}
