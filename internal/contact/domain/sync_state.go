package domain

import "time"

// SyncStage is the explicit state machine behind the historic-completion flag
type SyncStage string

const (
	StageUnsynced           SyncStage = "unsynced"
	StageHistoricInProgress SyncStage = "historic_in_progress"
	StageHistoricCompleted  SyncStage = "historic_completed"
)

// ContactEmailSyncState tracks sync progress per (contact, user).
// Created lazily on the first sync attempt, updated after every attempt,
// never deleted while the contact exists.
type ContactEmailSyncState struct {
	ID                    string     `json:"id" gorm:"primaryKey"`
	ContactID             string     `json:"contact_id" gorm:"index:idx_sync_state_contact_user,unique;not null"`
	UserID                string     `json:"user_id" gorm:"index:idx_sync_state_contact_user,unique;not null"`
	LastSyncAt            *time.Time `json:"last_sync_at"`
	LastInboxMessageID    string     `json:"last_inbox_message_id"`
	LastSentMessageID     string     `json:"last_sent_message_id"`
	HistoricSyncCompleted bool       `json:"historic_sync_completed" gorm:"default:false"`
	Stage                 SyncStage  `json:"stage" gorm:"default:unsynced"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// NeedsHistoricSync reports whether the contact still requires a full backfill.
func (s *ContactEmailSyncState) NeedsHistoricSync() bool {
	return s == nil || !s.HistoricSyncCompleted
}
