package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chirp/middleware"
	"chirp/models"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	users  *memUserStore
	tweets *memTweetStore
	tweet  *TweetHandler
}

func newTestEnv() *testEnv {
	users := newMemUserStore()
	tweets := newMemTweetStore(users)

	tweetHandler := NewTweetHandler(tweets)
	authHandler := NewAuthHandler(users, testSecret)

	router := gin.New()
	api := router.Group("/api")

	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.GET("/tweets", middleware.OptionalAuth(testSecret), tweetHandler.List)
	api.GET("/tweets/search", tweetHandler.Search)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(testSecret))
	protected.POST("/tweets", tweetHandler.Create)
	protected.DELETE("/tweets/:id", tweetHandler.Delete)
	protected.GET("/tweets/profile", tweetHandler.Profile)

	return &testEnv{
		router: router,
		users:  users,
		tweets: tweets,
		tweet:  tweetHandler,
	}
}

func signTestToken(t *testing.T, userID primitive.ObjectID) string {
	t.Helper()
	claims := &middleware.Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func (e *testEnv) addUser(t *testing.T, name, email string) (primitive.ObjectID, string) {
	t.Helper()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		Image:        "https://avatars.example.com/" + name + ".png",
		AuthProvider: "github",
		CreatedAt:    time.Now().Unix(),
		LastSeen:     time.Now().Unix(),
	}
	require.NoError(t, e.users.Insert(nil, &user))
	return user.ID, signTestToken(t, user.ID)
}

func (e *testEnv) seedTweet(t *testing.T, author primitive.ObjectID, content string, createdAt time.Time) primitive.ObjectID {
	t.Helper()
	tweet := models.Tweet{
		ID:        primitive.NewObjectID(),
		Content:   content,
		Author:    author,
		CreatedAt: createdAt,
	}
	require.NoError(t, e.tweets.Insert(nil, &tweet))
	return tweet.ID
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

type feedResponse struct {
	Tweets     []tweetJSON `json:"tweets"`
	Pagination struct {
		Total       int  `json:"total"`
		Pages       int  `json:"pages"`
		CurrentPage int  `json:"currentPage"`
		HasMore     bool `json:"hasMore"`
	} `json:"pagination"`
}

type limitResponse struct {
	RemainingTweets int  `json:"remainingTweets"`
	HasReachedLimit bool `json:"hasReachedLimit"`
}
