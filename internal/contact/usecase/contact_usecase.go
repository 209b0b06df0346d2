package usecase

import (
	"fmt"
	"strings"
	"time"

	"touchbase-backend/internal/contact/domain"
	"touchbase-backend/internal/contact/repository"
)

type contactUsecase struct {
	contactRepo     repository.ContactRepository
	interactionRepo repository.InteractionRepository
}

func NewContactUsecase(contactRepo repository.ContactRepository, interactionRepo repository.InteractionRepository) ContactUsecase {
	return &contactUsecase{
		contactRepo:     contactRepo,
		interactionRepo: interactionRepo,
	}
}

func (u *contactUsecase) CreateContact(userID string, contact *domain.Contact) error {
	contact.UserID = userID
	contact.Email = strings.ToLower(strings.TrimSpace(contact.Email))
	if contact.Email == "" {
		return fmt.Errorf("contact email is required")
	}
	if contact.Status == "" {
		contact.Status = domain.ContactStatusActive
	}

	existing, err := u.contactRepo.FindByEmail(userID, contact.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("contact with email %s already exists", contact.Email)
	}

	return u.contactRepo.Create(contact)
}

func (u *contactUsecase) GetContact(userID, id string) (*domain.Contact, error) {
	contact, err := u.contactRepo.FindByID(userID, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, domain.ErrContactNotFound
	}
	return contact, nil
}

func (u *contactUsecase) ListContacts(userID string, status domain.ContactStatus, limit, offset int) ([]*domain.Contact, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return u.contactRepo.List(userID, status, limit, offset)
}

func (u *contactUsecase) UpdateContact(userID string, contact *domain.Contact) error {
	existing, err := u.contactRepo.FindByID(userID, contact.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrContactNotFound
	}

	if contact.Name != "" {
		existing.Name = contact.Name
	}
	if contact.Email != "" {
		existing.Email = strings.ToLower(strings.TrimSpace(contact.Email))
	}
	if contact.Status != "" {
		existing.Status = contact.Status
	}
	existing.UpdatedAt = time.Now()

	*contact = *existing
	return u.contactRepo.Update(existing)
}

func (u *contactUsecase) DeleteContact(userID, id string) error {
	existing, err := u.contactRepo.FindByID(userID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrContactNotFound
	}
	return u.contactRepo.Delete(userID, id)
}

func (u *contactUsecase) ListInteractions(userID, contactID string, limit, offset int) ([]*domain.ContactInteraction, int64, error) {
	contact, err := u.contactRepo.FindByID(userID, contactID)
	if err != nil {
		return nil, 0, err
	}
	if contact == nil {
		return nil, 0, domain.ErrContactNotFound
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.interactionRepo.FindByContact(userID, contactID, limit, offset)
}
