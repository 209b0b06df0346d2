package domain

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Mail folders the sync engine queries
const (
	FolderInbox = "INBOX"
	FolderSent  = "SENT"
)

// TokenUpdateFunc persists refreshed OAuth tokens back to storage
type TokenUpdateFunc func(token *oauth2.Token) error

// ListThreadsParams scopes a thread search to one folder
type ListThreadsParams struct {
	Folder   string
	Query    string
	PageSize int64
}

// ThreadRef is a lightweight thread handle returned by a search
type ThreadRef struct {
	ID string `json:"id"`
}

// ThreadList is the result of a folder-scoped thread search
type ThreadList struct {
	Threads []ThreadRef `json:"threads"`
}

// Thread carries the messages of one conversation
type Thread struct {
	Messages []RawMessage `json:"messages"`
}

// RawMessage is the provider message shape before normalization. Address fields hold
// RFC 5322 header values (a bare address, "Name <addr>", or a comma-joined list).
// InternalDate is epoch milliseconds when the provider supplies it; Date is the raw
// Date header used as fallback.
type RawMessage struct {
	ID           string   `json:"id"`
	ThreadID     string   `json:"thread_id"`
	Subject      string   `json:"subject"`
	From         string   `json:"from"`
	To           []string `json:"to"`
	Cc           []string `json:"cc"`
	Bcc          []string `json:"bcc"`
	Date         string   `json:"date"`
	InternalDate int64    `json:"internal_date"`
}

// Participant is a normalized email participant
type Participant struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// ParsedEmail is the provider-agnostic intermediate form consumed by the
// interaction writer. It is never persisted as-is.
type ParsedEmail struct {
	MessageID  string
	ThreadID   string
	Subject    string
	From       Participant
	Recipients []Participant
	Timestamp  time.Time
	Folder     string
}

// MailDriver is the boundary to the external mail provider. Both operations are
// advisory: a nil driver degrades to empty results rather than failing a sync.
type MailDriver interface {
	ListThreads(ctx context.Context, params ListThreadsParams) (*ThreadList, error)
	GetThread(ctx context.Context, threadID string) (*Thread, error)
}
