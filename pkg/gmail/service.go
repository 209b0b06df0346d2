package gmail

import (
	"context"
	"fmt"
	"log"
	"time"

	contactdomain "touchbase-backend/internal/contact/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = contactdomain.TokenUpdateFunc

// Credentials carries the per-user OAuth material needed to talk to Gmail.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Driver implements the mail driver against the Gmail API. One driver is
// built per user per sync run; the wrapped token source persists refreshed
// tokens through the callback.
type Driver struct {
	srv *gmail.Service
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.Printf("[Gmail] failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

func NewDriver(ctx context.Context, creds Credentials, onTokenRefresh TokenUpdateFunc) (*Driver, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       creds.Expiry,
	}

	// Without a recorded expiry, force a refresh on first use when possible
	if token.Expiry.IsZero() && creds.RefreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return &Driver{srv: srv}, nil
}

func (d *Driver) ListThreads(ctx context.Context, params contactdomain.ListThreadsParams) (*contactdomain.ThreadList, error) {
	call := d.srv.Users.Threads.List("me").
		Q(params.Query).
		MaxResults(params.PageSize).
		Context(ctx)

	if params.Folder != "" {
		call = call.LabelIds(params.Folder)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list threads: %v", err)
	}

	list := &contactdomain.ThreadList{
		Threads: make([]contactdomain.ThreadRef, 0, len(resp.Threads)),
	}
	for _, t := range resp.Threads {
		list.Threads = append(list.Threads, contactdomain.ThreadRef{ID: t.Id})
	}
	return list, nil
}

func (d *Driver) GetThread(ctx context.Context, threadID string) (*contactdomain.Thread, error) {
	resp, err := d.srv.Users.Threads.Get("me", threadID).
		Format("metadata").
		MetadataHeaders("From", "To", "Cc", "Bcc", "Subject", "Date", "Message-ID").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve thread %s: %v", threadID, err)
	}

	thread := &contactdomain.Thread{
		Messages: make([]contactdomain.RawMessage, 0, len(resp.Messages)),
	}
	for _, msg := range resp.Messages {
		thread.Messages = append(thread.Messages, convertGmailMessage(msg))
	}
	return thread, nil
}

func convertGmailMessage(msg *gmail.Message) contactdomain.RawMessage {
	raw := contactdomain.RawMessage{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		InternalDate: msg.InternalDate,
	}

	if msg.Payload == nil {
		return raw
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			raw.From = header.Value
		case "To":
			raw.To = append(raw.To, header.Value)
		case "Cc":
			raw.Cc = append(raw.Cc, header.Value)
		case "Bcc":
			raw.Bcc = append(raw.Bcc, header.Value)
		case "Subject":
			raw.Subject = header.Value
		case "Date":
			raw.Date = header.Value
		}
	}

	return raw
}
