package repository

import (
	"errors"
	"time"

	"touchbase-backend/internal/contact/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// contactRepository implements ContactRepository interface
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new instance of contactRepository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{
		db: db,
	}
}

func (r *contactRepository) Create(contact *domain.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if contact.Status == "" {
		contact.Status = domain.ContactStatusActive
	}
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = time.Now()
	return r.db.Create(contact).Error
}

func (r *contactRepository) FindByID(userID, id string) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) FindByEmail(userID, email string) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.Where("user_id = ? AND email = ?", userID, email).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) FindActiveByUser(userID string, limit int) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	err := r.db.Where("user_id = ? AND status = ?", userID, domain.ContactStatusActive).
		Order("updated_at ASC").
		Limit(limit).
		Find(&contacts).Error
	return contacts, err
}

func (r *contactRepository) List(userID string, status domain.ContactStatus, limit, offset int) ([]*domain.Contact, int64, error) {
	var contacts []*domain.Contact
	var total int64

	query := r.db.Model(&domain.Contact{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("last_contacted_at DESC NULLS LAST, created_at DESC").
		Limit(limit).Offset(offset).Find(&contacts).Error

	return contacts, total, err
}

func (r *contactRepository) Update(contact *domain.Contact) error {
	contact.UpdatedAt = time.Now()
	return r.db.Save(contact).Error
}

func (r *contactRepository) UpdateLastContactedAt(userID, contactID string, at time.Time) error {
	return r.db.Model(&domain.Contact{}).
		Where("user_id = ? AND id = ?", userID, contactID).
		Updates(map[string]interface{}{
			"last_contacted_at": at,
			"updated_at":        time.Now(),
		}).Error
}

func (r *contactRepository) Delete(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&domain.Contact{}).Error
}
