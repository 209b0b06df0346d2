package domain

import "time"

// ContactStatus represents the lifecycle state of a contact
type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
	ContactStatusArchived ContactStatus = "archived"
)

// Contact represents a person the user keeps in touch with
type Contact struct {
	ID              string        `json:"id" gorm:"primaryKey"`
	UserID          string        `json:"user_id" gorm:"index:idx_contact_user_email,unique;not null"`
	Email           string        `json:"email" gorm:"index:idx_contact_user_email,unique;not null"`
	Name            string        `json:"name"`
	Status          ContactStatus `json:"status" gorm:"default:active;index"`
	LastContactedAt *time.Time    `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
