package api

import (
	"github.com/gin-gonic/gin"

	"github.com/timmy/retweets/internal/api/handler"
	"github.com/timmy/retweets/internal/api/middleware"
	"github.com/timmy/retweets/internal/logger"
)

// SetupRouter configures the Gin router with all routes.
// Parameters:
//   - submitter: handles tweets posted through the form and the JSON API.
//   - tweets: reads stored tweets for the index page and lookups; may be nil.
//   - model: reports model availability for the health check; may be nil.
//   - mode: gin mode (release, test, debug).
//   - log: base logger for request logging.
// Returns:
//   - *gin.Engine: configured router.
func SetupRouter(
	submitter handler.Submitter,
	tweets handler.TweetReader,
	model handler.ModelChecker,
	mode string,
	log *logger.Logger,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.SetHTMLTemplate(loadTemplates())

	healthHandler := handler.NewHealthHandler(model)
	tweetHandler := handler.NewTweetHandler(submitter, tweets)

	r.GET("/health", healthHandler.Health)

	r.GET("/", tweetHandler.Index)
	r.POST("/", tweetHandler.Index)
	r.POST("/tweet", tweetHandler.Submit)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/predict", tweetHandler.Predict)
		v1.GET("/tweets/:id", tweetHandler.Get)
	}

	return r
}
