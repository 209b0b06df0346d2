package usecase

import (
	"fmt"
	"time"

	"touchbase-backend/internal/contact/domain"
)

// BuildQuery constructs the folder-scoped search query for a contact. A nil since
// means historic mode: the full lifetime history with no time bound. Delta mode
// bounds the search to messages after the last recorded sync.
func BuildQuery(contact *domain.Contact, folder string, since *time.Time) string {
	email := contact.Email

	if folder == domain.FolderSent {
		if since != nil {
			// TODO: delta sent queries skip bcc while historic ones include it;
			// confirm the intended behavior before aligning the two paths.
			return fmt.Sprintf("to:%s OR cc:%s after:%d", email, email, since.Unix())
		}
		return fmt.Sprintf("to:%s OR cc:%s OR bcc:%s", email, email, email)
	}

	if since != nil {
		return fmt.Sprintf("from:%s after:%d", email, since.Unix())
	}
	return fmt.Sprintf("from:%s", email)
}
