package repository

import (
	"time"

	"touchbase-backend/internal/contact/domain"
)

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	Create(contact *domain.Contact) error
	FindByID(userID, id string) (*domain.Contact, error)
	FindByEmail(userID, email string) (*domain.Contact, error)
	// FindActiveByUser returns up to limit active contacts, oldest-synced first
	FindActiveByUser(userID string, limit int) ([]*domain.Contact, error)
	List(userID string, status domain.ContactStatus, limit, offset int) ([]*domain.Contact, int64, error)
	Update(contact *domain.Contact) error
	UpdateLastContactedAt(userID, contactID string, at time.Time) error
	Delete(userID, id string) error
}
