package api

import (
	"net/http"

	"touchbase-backend/internal/auth/delivery"
	authUsecase "touchbase-backend/internal/auth/usecase"
	contactDelivery "touchbase-backend/internal/contact/delivery"
	contactUsecase "touchbase-backend/internal/contact/usecase"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, contactUc contactUsecase.ContactUsecase, syncUc contactUsecase.EmailSyncUsecase) {
	authHandler := delivery.NewAuthHandler(authUc)
	contactHandler := contactDelivery.NewContactHandler(contactUc, syncUc)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/imap", authHandler.IMAPLogin)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// Contact routes (protected)
		contacts := api.Group("/contacts")
		contacts.Use(delivery.AuthMiddleware(authUc))
		{
			contacts.GET("", contactHandler.List)
			contacts.POST("", contactHandler.Create)
			contacts.POST("/sync", contactHandler.SyncAll)
			contacts.GET("/:id", contactHandler.Get)
			contacts.PUT("/:id", contactHandler.Update)
			contacts.DELETE("/:id", contactHandler.Delete)
			contacts.GET("/:id/interactions", contactHandler.ListInteractions)
			contacts.POST("/:id/sync", contactHandler.SyncOne)
		}
	}
}
