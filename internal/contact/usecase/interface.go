package usecase

import (
	"context"

	"touchbase-backend/internal/contact/domain"
)

// ContactUsecase defines the business logic for contact management
type ContactUsecase interface {
	CreateContact(userID string, contact *domain.Contact) error
	GetContact(userID, id string) (*domain.Contact, error)
	ListContacts(userID string, status domain.ContactStatus, limit, offset int) ([]*domain.Contact, int64, error)
	UpdateContact(userID string, contact *domain.Contact) error
	DeleteContact(userID, id string) error
	ListInteractions(userID, contactID string, limit, offset int) ([]*domain.ContactInteraction, int64, error)
}

// EmailSyncUsecase defines the contact email synchronization entry point
type EmailSyncUsecase interface {
	// SyncContactEmails syncs a single contact when contactID is non-empty,
	// otherwise a capped batch of the user's active contacts.
	SyncContactEmails(ctx context.Context, userID, contactID string, forceHistoric bool) error
}
