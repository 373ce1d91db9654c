package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpH "github.com/aliskhannn/quizroom/internal/delivery/http/handlers"
	httpMW "github.com/aliskhannn/quizroom/internal/delivery/http/middleware"
)

type RouterConfig struct {
	Logger         *zap.Logger
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware
	AuthHandler    *httpH.AuthHandler
	PageHandler    *httpH.PageHandler
	TestHandler    *httpH.TestHandler
	AttemptHandler *httpH.AttemptHandler
	ResultHandler  *httpH.ResultHandler
	DraftHandler   *httpH.DraftHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(httpMW.CORS(cfg.AllowedOrigins))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Landing
	if cfg.PageHandler != nil {
		r.GET("/", cfg.PageHandler.Login)
		r.GET("/login", cfg.PageHandler.Login)
	}

	r.NoRoute(func(c *gin.Context) {
		c.Redirect(nethttp.StatusFound, "/login")
	})

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/signup", cfg.AuthHandler.SignUp)
			api.POST("/auth/signin", cfg.AuthHandler.SignIn)
			api.POST("/auth/google", cfg.AuthHandler.SignInGoogle)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		if cfg.AuthHandler != nil {
			protected.POST("/auth/signout", cfg.AuthHandler.SignOut)
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Tests
		if cfg.TestHandler != nil {
			protected.GET("/tests", cfg.TestHandler.List)
			protected.GET("/tests/:id", cfg.TestHandler.Get)
		}

		// Attempts
		if cfg.AttemptHandler != nil {
			protected.POST("/tests/:id/attempts", cfg.AttemptHandler.Start)
			protected.GET("/attempts/:id", cfg.AttemptHandler.Get)
			protected.PUT("/attempts/:id/answers/:pos", cfg.AttemptHandler.Answer)
			protected.POST("/attempts/:id/submit", cfg.AttemptHandler.Submit)
			protected.DELETE("/attempts/:id", cfg.AttemptHandler.Abandon)
		}

		// Results
		if cfg.ResultHandler != nil {
			protected.GET("/results", cfg.ResultHandler.List)
			protected.GET("/dashboard", cfg.ResultHandler.Dashboard)
		}
	}

	admin := protected.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	{
		if cfg.DraftHandler != nil {
			admin.GET("/draft", cfg.DraftHandler.Get)
			admin.PATCH("/draft", cfg.DraftHandler.Update)
			admin.DELETE("/draft", cfg.DraftHandler.Reset)
			admin.POST("/draft/questions", cfg.DraftHandler.AppendQuestion)
			admin.PUT("/draft/questions/:pos", cfg.DraftHandler.UpdateQuestion)
			admin.POST("/draft/generate", cfg.DraftHandler.Generate)
			admin.POST("/draft/submit", cfg.DraftHandler.Submit)
		}

		if cfg.ResultHandler != nil {
			admin.GET("/results", cfg.ResultHandler.List)
		}
	}

	return r
}
