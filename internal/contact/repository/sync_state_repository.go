package repository

import (
	"errors"
	"time"

	"touchbase-backend/internal/contact/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncStateRepository implements SyncStateRepository interface
type syncStateRepository struct {
	db *gorm.DB
}

// NewSyncStateRepository creates a new instance of syncStateRepository
func NewSyncStateRepository(db *gorm.DB) SyncStateRepository {
	return &syncStateRepository{
		db: db,
	}
}

func (r *syncStateRepository) FindByContact(contactID, userID string) (*domain.ContactEmailSyncState, error) {
	var state domain.ContactEmailSyncState
	err := r.db.Where("contact_id = ? AND user_id = ?", contactID, userID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *syncStateRepository) Upsert(state *domain.ContactEmailSyncState) error {
	now := time.Now()
	state.UpdatedAt = now

	if state.ID != "" {
		return r.db.Save(state).Error
	}

	// First sync attempt for this contact: create the row lazily
	existing, err := r.FindByContact(state.ContactID, state.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		state.ID = existing.ID
		state.CreatedAt = existing.CreatedAt
		return r.db.Save(state).Error
	}

	state.ID = uuid.New().String()
	state.CreatedAt = now
	return r.db.Create(state).Error
}
