package api

import (
	authUsecase "touchbase-backend/internal/auth/usecase"
	contactUsecase "touchbase-backend/internal/contact/usecase"
	"touchbase-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase    authUsecase.AuthUsecase
	contactUsecase contactUsecase.ContactUsecase
	syncUsecase    contactUsecase.EmailSyncUsecase
	config         *config.Config
}

func NewHandler(authUc authUsecase.AuthUsecase, contactUc contactUsecase.ContactUsecase, syncUc contactUsecase.EmailSyncUsecase, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase:    authUc,
		contactUsecase: contactUc,
		syncUsecase:    syncUc,
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.contactUsecase, h.syncUsecase)

	return r.Run(addr)
}
