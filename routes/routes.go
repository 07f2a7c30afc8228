package routes

import (
	"net/http"

	"ytquiz/handlers"
	"ytquiz/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	quizHandler *handlers.QuizHandler,
	progressHandler *handlers.ProgressHandler,
	validator middleware.TokenValidator,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register/", authHandler.Register)
		api.POST("/login/", authHandler.Login)
		api.POST("/logout/", authHandler.Logout)
		api.POST("/token/refresh/", authHandler.RefreshToken)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(validator))
		{
			protected.GET("/profile/", authHandler.GetProfile)

			protected.POST("/createQuiz/", quizHandler.CreateQuiz)

			quizzes := protected.Group("/quizzes")
			{
				quizzes.GET("/", quizHandler.GetUserQuizzes)
				quizzes.GET("/:id/", quizHandler.GetQuizByID)
				quizzes.PUT("/:id/", quizHandler.UpdateQuiz)
				quizzes.PATCH("/:id/", quizHandler.PatchQuiz)
				quizzes.DELETE("/:id/", quizHandler.DeleteQuiz)
			}
		}
	}

	// WebSocket endpoint for pipeline progress
	router.GET("/ws/progress", middleware.AuthMiddleware(validator), progressHandler.Stream)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
