package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chirp/models"
	"chirp/store"
)

type TweetHandler struct {
	tweets store.TweetStore
	now    func() time.Time
}

func NewTweetHandler(tweets store.TweetStore) *TweetHandler {
	return &TweetHandler{tweets: tweets, now: time.Now}
}

type CreateTweetRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

// callerID resolves the authenticated caller from the context set by the
// auth middleware.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr := c.GetString("userId")
	if userIDStr == "" {
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return userID, true
}

// List serves GET /api/tweets: the paginated global feed, or the caller's
// quota snapshot when ?checkLimit=true.
func (h *TweetHandler) List(c *gin.Context) {
	if c.Query("checkLimit") == "true" {
		h.checkLimit(c)
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	skip := int64(page-1) * pageSize

	tweets, total, err := h.tweets.ListPage(ctx, skip, pageSize)
	if err != nil {
		log.Printf("List tweets error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tweets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tweets": serializeTweets(tweets),
		"pagination": gin.H{
			"total":       total,
			"pages":       (total + pageSize - 1) / pageSize,
			"currentPage": page,
			"hasMore":     skip+int64(len(tweets)) < total,
		},
	})
}

// checkLimit reports the caller's remaining daily quota. Advisory only: the
// enforcement lives in Create, with the same window and limit.
func (h *TweetHandler) checkLimit(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	from, to := todayWindow(h.now())
	count, err := h.tweets.CountByAuthorBetween(ctx, userID, from, to)
	if err != nil {
		log.Printf("checkLimit count error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check tweet limit"})
		return
	}

	remaining := dailyTweetLimit - count
	if remaining < 0 {
		remaining = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"remainingTweets": remaining,
		"hasReachedLimit": count >= dailyTweetLimit,
	})
}

// Create serves POST /api/tweets.
//
// The quota is count-then-insert: concurrent requests from the same caller
// can both pass the check. Accepted, the cap is client UX rather than an
// accounting guarantee.
func (h *TweetHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	from, to := todayWindow(h.now())
	count, err := h.tweets.CountByAuthorBetween(ctx, userID, from, to)
	if err != nil {
		log.Printf("Create tweet count error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tweet"})
		return
	}
	if count >= dailyTweetLimit {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "You have reached the limit of 10 tweets per day. Try again tomorrow.",
		})
		return
	}

	var req CreateTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tweet content is required"})
		return
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tweet content must be at most 280 characters"})
		return
	}

	tweet := models.Tweet{
		ID:        primitive.NewObjectID(),
		Content:   content,
		Author:    userID,
		Image:     req.Image,
		CreatedAt: h.now(),
	}

	if err := h.tweets.Insert(ctx, &tweet); err != nil {
		log.Printf("Create tweet insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tweet"})
		return
	}

	created, err := h.tweets.GetWithAuthor(ctx, tweet.ID)
	if err != nil {
		log.Printf("Create tweet fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tweet"})
		return
	}

	c.JSON(http.StatusCreated, serializeTweet(*created))
}

// Delete serves DELETE /api/tweets/:id. Only the author may delete; there
// is no moderator override.
func (h *TweetHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	tweetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tweet ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	tweet, err := h.tweets.Get(ctx, tweetID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tweet not found"})
		return
	}
	if err != nil {
		log.Printf("Delete tweet fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tweet"})
		return
	}

	if tweet.Author != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this tweet"})
		return
	}

	if err := h.tweets.Delete(ctx, tweetID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Delete tweet error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tweet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tweet deleted successfully"})
}

// Profile serves GET /api/tweets/profile: the caller's own tweets, newest
// first, unpaginated.
func (h *TweetHandler) Profile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	tweets, err := h.tweets.ListByAuthor(ctx, userID)
	if err != nil {
		log.Printf("Profile tweets error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile tweets"})
		return
	}

	c.JSON(http.StatusOK, serializeTweets(tweets))
}

// Search serves GET /api/tweets/search?q=term. Public, case-insensitive,
// and literal: the store escapes the query before matching.
func (h *TweetHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A search term is required"})
		return
	}

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search term must be at least 2 characters"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	tweets, err := h.tweets.Search(ctx, query, searchResultCap)
	if err != nil {
		log.Printf("Search tweets error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search tweets"})
		return
	}

	c.JSON(http.StatusOK, serializeTweets(tweets))
}
