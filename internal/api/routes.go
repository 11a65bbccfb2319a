package api

import (
	"net/http"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/service"

	"github.com/gin-gonic/gin"
)

// Services groups what the HTTP layer needs. Chatbot may be nil when no
// datasets are configured.
type Services struct {
	Auth        service.AuthService
	Cafeteria   service.CafeteriaService
	Mural       service.MuralService
	Reservation service.ReservationService
	Points      service.PointsService
	Admin       service.AdminService
	Chatbot     Answerer
}

func SetupRoutes(router *gin.Engine, svc Services, cookie CookieSettings) {
	authHandler := NewAuthHandler(svc.Auth, cookie)
	cafeteriaHandler := NewCafeteriaHandler(svc.Cafeteria)
	muralHandler := NewMuralHandler(svc.Mural)
	reservationHandler := NewReservationHandler(svc.Reservation)
	pointsHandler := NewPointsHandler(svc.Points)
	adminHandler := NewAdminHandler(svc.Admin)

	authMiddleware := AuthMiddleware(svc.Auth, cookie.Name)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/google", authHandler.GoogleLogin)
			authGroup.POST("/logout", authHandler.Logout)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		cafeteriaGroup := protected.Group("/cafeteria")
		{
			cafeteriaGroup.GET("/proteins", cafeteriaHandler.Proteins)
			cafeteriaGroup.GET("/month", cafeteriaHandler.GetMonth)
			cafeteriaGroup.POST("/month/preview", cafeteriaHandler.PreviewMonth)
			cafeteriaGroup.POST("/bulk-plan", cafeteriaHandler.PlanBulkApply)
			cafeteriaGroup.POST("/exchanges", cafeteriaHandler.Submit)
		}

		muralGroup := protected.Group("/mural")
		{
			muralGroup.GET("/posts", muralHandler.ListPosts)
			muralGroup.POST("/posts", muralHandler.CreatePost)
			muralGroup.POST("/uploads", muralHandler.RequestUpload)
			muralGroup.PUT("/posts/:postId/like", muralHandler.SetLike)
			muralGroup.POST("/posts/:postId/comments", muralHandler.AddComment)
			muralGroup.DELETE("/posts/:postId", muralHandler.DeletePost)
		}

		reservationGroup := protected.Group("/reservations")
		{
			reservationGroup.GET("", reservationHandler.ListReservations)
			reservationGroup.POST("", reservationHandler.CreateReservation)
			reservationGroup.DELETE("/:reservationId", reservationHandler.CancelReservation)
		}

		pointsGroup := protected.Group("/points")
		{
			pointsGroup.GET("/me", pointsHandler.MyHistory)
			pointsGroup.GET("/leaderboard", pointsHandler.Leaderboard)
		}

		if svc.Chatbot != nil {
			protected.POST("/chatbot/ask", NewChatbotHandler(svc.Chatbot).Ask)
		}

		// --- Admin panel ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.PUT("/users/:userId/role", adminHandler.SetRole)
			adminGroup.POST("/users/:userId/points", adminHandler.AdjustPoints)
			adminGroup.POST("/menu", cafeteriaHandler.ImportMenu)
			adminGroup.GET("/cafeteria/tally", cafeteriaHandler.Tally)
		}
	}
}
