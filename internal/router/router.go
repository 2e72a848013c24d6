package router

import (
	"interview-ace/internal/config"
	"interview-ace/internal/handlers"
	"interview-ace/internal/models"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}
func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
}

func Setup(log *zap.Logger, bank *models.QuestionBank) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("iacesession", store))

	// --- Now that sessions are initialized, other middleware can use them ---
	router.Use(CSRFProtection())
	router.Use(UserLoaderMiddleware())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// The capture client: camera setup, MediaPipe, and the live socket UI.
	router.Static("/assets", "./assets")

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log)
	sessionHandler := handlers.NewSessionHandler(log, bank)
	liveHandler := handlers.NewLiveHandler(log)
	resultsHandler := handlers.NewResultsHandler(log)
	userHandler := handlers.NewUserHandler(log)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")
	{
		api.POST("/auth/register", limiter, authHandler.Register)
		api.POST("/auth/login", limiter, authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		authorized := api.Group("/")
		authorized.Use(AuthRequired())
		{
			authorized.GET("/user", userHandler.ShowProfile)
			authorized.PUT("/user/info", userHandler.UpdateInfo)
			authorized.PUT("/user/password", userHandler.UpdatePassword)
			authorized.PUT("/user/notifications", userHandler.UpdateNotificationSettings)
			authorized.DELETE("/user", userHandler.DeleteAccount)

			authorized.GET("/questions/categories", sessionHandler.ListCategories)

			authorized.POST("/sessions", sessionHandler.CreateSession)
			authorized.GET("/sessions", sessionHandler.ListSessions)
			authorized.GET("/sessions/:id", sessionHandler.GetSession)
			authorized.DELETE("/sessions/:id", sessionHandler.DeleteSession)
			authorized.GET("/sessions/:id/live", liveHandler.Stream)

			authorized.GET("/results/progress", resultsHandler.ShowProgress)
			authorized.GET("/results/violations", resultsHandler.ShowViolations)
		}
	}

	return router
}
