package repository

import "touchbase-backend/internal/contact/domain"

// SyncStateRepository defines the interface for per-contact email sync state
type SyncStateRepository interface {
	FindByContact(contactID, userID string) (*domain.ContactEmailSyncState, error)
	Upsert(state *domain.ContactEmailSyncState) error
}
