package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/retweets/internal/api/middleware"
	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/logger"
)

// Submitter predicts and records a submitted tweet.
type Submitter interface {
	Submit(ctx context.Context, content string) (*domain.Prediction, error)
}

// TweetReader reads stored tweets.
type TweetReader interface {
	GetByID(ctx context.Context, id string) (*domain.Tweet, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Tweet, error)
}

// recentLimit is the number of stored tweets listed under the form.
const recentLimit = 10

// TweetHandler serves the prediction form and its JSON counterpart.
type TweetHandler struct {
	submitter Submitter
	tweets    TweetReader
}

// NewTweetHandler creates a new tweet handler. tweets may be nil.
func NewTweetHandler(submitter Submitter, tweets TweetReader) *TweetHandler {
	return &TweetHandler{submitter: submitter, tweets: tweets}
}

// PredictRequest is the body of POST /api/v1/predict.
type PredictRequest struct {
	Content string `json:"content" binding:"required"`
}

// Index renders the input form followed by the latest stored tweets. A
// failing store only hides the list.
func (h *TweetHandler) Index(c *gin.Context) {
	log := middleware.GetLogger(c)

	var recent []domain.Tweet
	if h.tweets != nil {
		var err error
		recent, err = h.tweets.ListRecent(c.Request.Context(), recentLimit)
		if err != nil {
			log.WithError(err).Warn("Unable to list recent tweets")
		}
	}

	log.WithField("recent", len(recent)).Info("Index page rendered")
	c.HTML(http.StatusOK, "index.html", gin.H{
		"MaxLength": domain.MaxContentLength,
		"Recent":    recent,
	})
}

// Get handles GET /api/v1/tweets/:id.
func (h *TweetHandler) Get(c *gin.Context) {
	if h.tweets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Tweet storage is not configured"})
		return
	}

	tweet, err := h.tweets.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tweet not found"})
		return
	}
	if err != nil {
		status, message := describe(err)
		middleware.GetLogger(c).WithError(err).Warn("Tweet lookup failed")
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, tweet)
}

// Submit handles POST /tweet with the form field tweet_content. Failures
// render the error view; they never surface as a bare server error.
func (h *TweetHandler) Submit(c *gin.Context) {
	content := c.PostForm("tweet_content")
	log := middleware.GetLogger(c)

	result, err := h.submitter.Submit(c.Request.Context(), content)
	if err != nil {
		status, message := describe(err)
		log.WithError(err).Warn("Prediction failed, error page returned")
		c.HTML(status, "error.html", gin.H{
			"Message":   message,
			"RequestID": logger.GetRequestID(c.Request.Context()),
		})
		return
	}

	c.HTML(http.StatusOK, "tweet.html", gin.H{
		"Content":  result.Content,
		"Retweets": result.Retweets,
	})
}

// Predict handles POST /api/v1/predict.
func (h *TweetHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	result, err := h.submitter.Submit(c.Request.Context(), req.Content)
	if err != nil {
		status, message := describe(err)
		middleware.GetLogger(c).WithError(err).Warn("Prediction failed")
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, result)
}

// describe maps an error class to a status code and a user-facing message.
func describe(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "Please enter a tweet of at most 280 characters."
	case domain.IsDegraded(err):
		return http.StatusServiceUnavailable, "The prediction service is unavailable right now. Please try again later."
	default:
		return http.StatusInternalServerError, "Unable to process your tweet."
	}
}
