package usecase

import (
	"log"
	"sort"

	"touchbase-backend/internal/contact/domain"
	"touchbase-backend/internal/contact/repository"
)

// InteractionWriter turns parsed emails into interaction rows. Writes are
// idempotent: a (contact, thread, message-id) triple is inserted at most once,
// so replaying a sync window is safe.
type InteractionWriter struct {
	interactionRepo repository.InteractionRepository
	contactRepo     repository.ContactRepository
}

func NewInteractionWriter(interactionRepo repository.InteractionRepository, contactRepo repository.ContactRepository) *InteractionWriter {
	return &InteractionWriter{
		interactionRepo: interactionRepo,
		contactRepo:     contactRepo,
	}
}

// ProcessEmails persists the batch newest-first and returns the bookmark message
// IDs: the newest inbox message and the newest sent message seen in this pass.
// Individual row failures are logged and skipped.
func (w *InteractionWriter) ProcessEmails(emails []domain.ParsedEmail, contact *domain.Contact) (lastInboxID, lastSentID string) {
	sort.Slice(emails, func(i, j int) bool {
		return emails[i].Timestamp.After(emails[j].Timestamp)
	})

	var newestInserted *domain.ParsedEmail

	for i := range emails {
		email := emails[i]
		direction := domain.DirectionInbound
		if email.Folder == domain.FolderSent {
			direction = domain.DirectionOutbound
		}

		if direction == domain.DirectionInbound && lastInboxID == "" {
			lastInboxID = email.MessageID
		}
		if direction == domain.DirectionOutbound && lastSentID == "" {
			lastSentID = email.MessageID
		}

		exists, err := w.interactionRepo.Exists(contact.ID, email.ThreadID, email.MessageID)
		if err != nil {
			log.Printf("[InteractionWriter] dedup check failed for message %s: %v", email.MessageID, err)
			continue
		}
		if exists {
			continue
		}

		recipients := make([]string, 0, len(email.Recipients))
		for _, r := range email.Recipients {
			recipients = append(recipients, r.Email)
		}

		interaction := &domain.ContactInteraction{
			ContactID:   contact.ID,
			UserID:      contact.UserID,
			Type:        domain.InteractionTypeEmail,
			Direction:   direction,
			Subject:     email.Subject,
			ThreadID:    email.ThreadID,
			CompletedAt: email.Timestamp,
			Metadata: domain.JSONMap{
				domain.MetaMessageID: email.MessageID,
				domain.MetaFolder:    email.Folder,
				domain.MetaFrom:      email.From.Email,
				domain.MetaTo:        recipients,
			},
		}

		if err := w.interactionRepo.Create(interaction); err != nil {
			log.Printf("[InteractionWriter] failed to save interaction for message %s: %v", email.MessageID, err)
			continue
		}

		if newestInserted == nil {
			newestInserted = &emails[i]
		}
	}

	// The batch is ordered newest-first, so the first successful insert carries
	// the most recent contact activity.
	if newestInserted != nil {
		if err := w.contactRepo.UpdateLastContactedAt(contact.UserID, contact.ID, newestInserted.Timestamp); err != nil {
			log.Printf("[InteractionWriter] failed to update last contacted at for contact %s: %v", contact.ID, err)
		}
	}

	return lastInboxID, lastSentID
}
