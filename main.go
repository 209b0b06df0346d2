package main

import (
	"log"

	api "touchbase-backend/cmd/api"
	authdomain "touchbase-backend/internal/auth/domain"
	authRepo "touchbase-backend/internal/auth/repository"
	authUsecase "touchbase-backend/internal/auth/usecase"
	contactdomain "touchbase-backend/internal/contact/domain"
	contactRepo "touchbase-backend/internal/contact/repository"
	contactUsecase "touchbase-backend/internal/contact/usecase"
	"touchbase-backend/pkg/config"
	"touchbase-backend/pkg/database"
	"touchbase-backend/pkg/imap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&contactdomain.Contact{},
		&contactdomain.ContactInteraction{},
		&contactdomain.ContactEmailSyncState{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	contactRepository := contactRepo.NewContactRepository(db)
	interactionRepo := contactRepo.NewInteractionRepository(db)
	syncStateRepo := contactRepo.NewSyncStateRepository(db)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg, imap.VerifyLogin)
	contactUsecaseInstance := contactUsecase.NewContactUsecase(contactRepository, interactionRepo)

	driverFactory := contactUsecase.NewMailDriverFactory(cfg, userRepo)
	writer := contactUsecase.NewInteractionWriter(interactionRepo, contactRepository)
	syncEngine := contactUsecase.NewSyncEngine(contactRepository, syncStateRepo, userRepo, driverFactory, writer)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, contactUsecaseInstance, syncEngine, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
