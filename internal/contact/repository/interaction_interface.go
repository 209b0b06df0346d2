package repository

import "touchbase-backend/internal/contact/domain"

// InteractionRepository defines the interface for contact interaction persistence
type InteractionRepository interface {
	Create(interaction *domain.ContactInteraction) error
	// Exists checks the dedup key: contact + thread + provider message id
	Exists(contactID, threadID, messageID string) (bool, error)
	FindByContact(userID, contactID string, limit, offset int) ([]*domain.ContactInteraction, int64, error)
}
