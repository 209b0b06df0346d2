package imap

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	contactdomain "touchbase-backend/internal/contact/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"
)

// sentFolderNames are tried in order; servers disagree on the sent mailbox name
var sentFolderNames = []string{"Sent", "Sent Items", "Sent Mail"}

// Driver implements the mail driver over IMAP. Generic IMAP has no thread
// model, so every message stands in as its own single-message thread; thread
// IDs encode the mailbox and UID ("INBOX:42") because fetching reconnects.
type Driver struct {
	server   string
	port     int
	email    string
	password string
}

func NewDriver(server string, port int, email, password string) *Driver {
	return &Driver{
		server:   server,
		port:     port,
		email:    email,
		password: password,
	}
}

// VerifyLogin checks the credentials with a throwaway connection.
func VerifyLogin(server string, port int, email, password string) error {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", server, port), nil)
	if err != nil {
		return fmt.Errorf("connection error: %v", err)
	}
	defer c.Logout()

	if err := c.Login(email, password); err != nil {
		return fmt.Errorf("login error: %v", err)
	}
	return nil
}

func (d *Driver) connect(folder string) (*client.Client, string, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", d.server, d.port), nil)
	if err != nil {
		return nil, "", fmt.Errorf("connection error: %v", err)
	}

	if err := c.Login(d.email, d.password); err != nil {
		c.Logout()
		return nil, "", fmt.Errorf("login error: %v", err)
	}

	mailbox, err := selectFolder(c, folder)
	if err != nil {
		c.Logout()
		return nil, "", err
	}

	return c, mailbox, nil
}

func selectFolder(c *client.Client, folder string) (string, error) {
	if folder != contactdomain.FolderSent {
		if _, err := c.Select("INBOX", true); err != nil {
			return "", fmt.Errorf("error selecting INBOX: %v", err)
		}
		return "INBOX", nil
	}

	for _, name := range sentFolderNames {
		if _, err := c.Select(name, true); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("could not find Sent folder")
}

func (d *Driver) ListThreads(ctx context.Context, params contactdomain.ListThreadsParams) (*contactdomain.ThreadList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, mailbox, err := d.connect(params.Folder)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	criteria, err := translateQuery(params.Query)
	if err != nil {
		return nil, err
	}

	c.Timeout = 20 * time.Second
	uids, err := c.UidSearch(criteria)
	c.Timeout = 0
	if err != nil {
		return nil, fmt.Errorf("error searching %s: %v", mailbox, err)
	}

	// UIDs ascend with arrival order; keep the newest page
	if params.PageSize > 0 && int64(len(uids)) > params.PageSize {
		uids = uids[int64(len(uids))-params.PageSize:]
	}

	list := &contactdomain.ThreadList{Threads: make([]contactdomain.ThreadRef, 0, len(uids))}
	for i := len(uids) - 1; i >= 0; i-- {
		list.Threads = append(list.Threads, contactdomain.ThreadRef{
			ID: fmt.Sprintf("%s:%d", params.Folder, uids[i]),
		})
	}
	return list, nil
}

func (d *Driver) GetThread(ctx context.Context, threadID string) (*contactdomain.Thread, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder, uid, err := splitThreadID(threadID)
	if err != nil {
		return nil, err
	}

	c, mailbox, err := d.connect(folder)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchInternalDate,
		imap.FetchUid,
		section.FetchItem(),
	}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	var raw *contactdomain.RawMessage
	for msg := range messages {
		converted := convertImapMessage(msg, section, threadID)
		raw = &converted
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("error fetching message %d from %s: %v", uid, mailbox, err)
	}
	if raw == nil {
		return &contactdomain.Thread{}, nil
	}

	return &contactdomain.Thread{Messages: []contactdomain.RawMessage{*raw}}, nil
}

func convertImapMessage(msg *imap.Message, section *imap.BodySectionName, threadID string) contactdomain.RawMessage {
	raw := contactdomain.RawMessage{
		ID:       threadID,
		ThreadID: threadID,
	}

	if !msg.InternalDate.IsZero() {
		raw.InternalDate = msg.InternalDate.UnixMilli()
	}

	if env := msg.Envelope; env != nil {
		raw.Subject = env.Subject
		if env.MessageId != "" {
			raw.ID = env.MessageId
		}
		if !env.Date.IsZero() {
			raw.Date = env.Date.Format(time.RFC1123Z)
		}
		if len(env.From) > 0 {
			raw.From = formatAddress(env.From[0])
		}
		raw.To = formatAddresses(env.To)
		raw.Cc = formatAddresses(env.Cc)
	}

	// Bcc never rides in the envelope; pull it from the raw header
	if body := msg.GetBody(section); body != nil {
		if entity, err := message.Read(body); err == nil {
			header := gomail.Header{Header: entity.Header}
			if addrs, err := header.AddressList("Bcc"); err == nil {
				for _, addr := range addrs {
					raw.Bcc = append(raw.Bcc, addr.String())
				}
			}
		} else {
			log.Printf("[IMAP] failed to parse header of message %s: %v", threadID, err)
		}
	}

	return raw
}

func formatAddress(addr *imap.Address) string {
	email := addr.Address()
	if addr.PersonalName != "" {
		return fmt.Sprintf("%s <%s>", addr.PersonalName, email)
	}
	return email
}

func formatAddresses(addrs []*imap.Address) []string {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, formatAddress(addr))
	}
	return out
}

func splitThreadID(threadID string) (folder string, uid uint32, err error) {
	idx := strings.LastIndex(threadID, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("malformed thread id %q", threadID)
	}
	parsed, err := strconv.ParseUint(threadID[idx+1:], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("malformed thread id %q: %v", threadID, err)
	}
	return threadID[:idx], uint32(parsed), nil
}

// translateQuery maps the engine's search syntax ("from:a@b OR cc:a@b after:N")
// onto IMAP SEARCH criteria. Unknown terms are ignored rather than rejected.
func translateQuery(query string) (*imap.SearchCriteria, error) {
	var since time.Time
	var alternates []*imap.SearchCriteria

	for _, clause := range strings.Split(query, " OR ") {
		criteria := imap.NewSearchCriteria()
		matched := false

		for _, token := range strings.Fields(clause) {
			field, value, ok := strings.Cut(token, ":")
			if !ok {
				continue
			}
			switch field {
			case "from":
				criteria.Header.Add("From", value)
				matched = true
			case "to":
				criteria.Header.Add("To", value)
				matched = true
			case "cc":
				criteria.Header.Add("Cc", value)
				matched = true
			case "bcc":
				criteria.Header.Add("Bcc", value)
				matched = true
			case "after":
				epoch, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("malformed after clause %q", token)
				}
				since = time.Unix(epoch, 0)
			}
		}

		if matched {
			alternates = append(alternates, criteria)
		}
	}

	if len(alternates) == 0 {
		return nil, fmt.Errorf("query %q has no searchable terms", query)
	}

	if !since.IsZero() {
		for _, criteria := range alternates {
			criteria.Since = since
		}
	}

	combined := alternates[0]
	for _, alt := range alternates[1:] {
		parent := imap.NewSearchCriteria()
		parent.Or = [][2]*imap.SearchCriteria{{combined, alt}}
		combined = parent
	}
	return combined, nil
}
