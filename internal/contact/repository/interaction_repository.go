package repository

import (
	"time"

	"touchbase-backend/internal/contact/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// interactionRepository implements InteractionRepository interface
type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new instance of interactionRepository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{
		db: db,
	}
}

func (r *interactionRepository) Create(interaction *domain.ContactInteraction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.Type == "" {
		interaction.Type = domain.InteractionTypeEmail
	}
	interaction.CreatedAt = time.Now()
	return r.db.Create(interaction).Error
}

func (r *interactionRepository) Exists(contactID, threadID, messageID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.ContactInteraction{}).
		Where("contact_id = ? AND thread_id = ? AND metadata->>? = ?",
			contactID, threadID, domain.MetaMessageID, messageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *interactionRepository) FindByContact(userID, contactID string, limit, offset int) ([]*domain.ContactInteraction, int64, error) {
	var interactions []*domain.ContactInteraction
	var total int64

	query := r.db.Model(&domain.ContactInteraction{}).
		Where("user_id = ? AND contact_id = ?", userID, contactID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("completed_at DESC").
		Limit(limit).Offset(offset).Find(&interactions).Error

	return interactions, total, err
}
