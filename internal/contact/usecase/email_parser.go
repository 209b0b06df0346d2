package usecase

import (
	"log"
	"net/mail"
	"strings"
	"time"

	"touchbase-backend/internal/contact/domain"
)

// ParseEmail normalizes a provider message into a ParsedEmail. It returns nil
// (logged, never an error) when the sender or the timestamp cannot be extracted,
// so one malformed message never aborts a sync batch.
func ParseEmail(raw domain.RawMessage, folder string) *domain.ParsedEmail {
	from, ok := parseParticipant(raw.From)
	if !ok {
		log.Printf("[EmailParser] skipping message %s: unparsable sender %q", raw.ID, raw.From)
		return nil
	}

	var recipients []domain.Participant
	for _, headers := range [][]string{raw.To, raw.Cc, raw.Bcc} {
		for _, header := range headers {
			recipients = append(recipients, parseParticipantList(header)...)
		}
	}

	timestamp, ok := parseTimestamp(raw)
	if !ok {
		log.Printf("[EmailParser] skipping message %s: unparsable date %q", raw.ID, raw.Date)
		return nil
	}

	return &domain.ParsedEmail{
		MessageID:  raw.ID,
		ThreadID:   raw.ThreadID,
		Subject:    raw.Subject,
		From:       from,
		Recipients: recipients,
		Timestamp:  timestamp,
		Folder:     folder,
	}
}

// parseParticipant accepts a bare address or an RFC 5322 "Name <addr>" form.
func parseParticipant(value string) (domain.Participant, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.Participant{}, false
	}

	if addr, err := mail.ParseAddress(value); err == nil {
		return domain.Participant{
			Email: strings.ToLower(addr.Address),
			Name:  addr.Name,
		}, true
	}

	// Fall back to treating the value as a bare address
	if strings.Contains(value, "@") && !strings.ContainsAny(value, "<> ") {
		return domain.Participant{Email: strings.ToLower(value)}, true
	}

	return domain.Participant{}, false
}

// parseParticipantList handles header values carrying several comma-joined addresses.
func parseParticipantList(value string) []domain.Participant {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if addrs, err := mail.ParseAddressList(value); err == nil {
		participants := make([]domain.Participant, 0, len(addrs))
		for _, addr := range addrs {
			participants = append(participants, domain.Participant{
				Email: strings.ToLower(addr.Address),
				Name:  addr.Name,
			})
		}
		return participants
	}

	var participants []domain.Participant
	for _, part := range strings.Split(value, ",") {
		if p, ok := parseParticipant(part); ok {
			participants = append(participants, p)
		}
	}
	return participants
}

func parseTimestamp(raw domain.RawMessage) (time.Time, bool) {
	if raw.InternalDate > 0 {
		return time.UnixMilli(raw.InternalDate), true
	}
	if raw.Date != "" {
		if ts, err := mail.ParseDate(raw.Date); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
