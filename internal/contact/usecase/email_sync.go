package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	authdomain "touchbase-backend/internal/auth/domain"
	authrepo "touchbase-backend/internal/auth/repository"
	"touchbase-backend/internal/contact/domain"
	"touchbase-backend/internal/contact/repository"
)

const (
	// syncBatchLimit caps how many contacts a single batch run touches.
	syncBatchLimit = 5
	// defaultSyncTimeout bounds a whole batch, not a single contact.
	defaultSyncTimeout = 30 * time.Second
	// maxThreadsPerQuery and maxMessagesPerThread bound provider fan-out
	// per folder query regardless of what the provider returns.
	maxThreadsPerQuery   = 20
	maxMessagesPerThread = 10
	searchPageSize       = int64(20)
)

// SyncEngine pulls a contact's email history from the user's mail provider and
// records it as interactions. Historic mode backfills the full history once;
// delta mode only fetches messages newer than the last recorded sync.
type SyncEngine struct {
	contactRepo   repository.ContactRepository
	syncStateRepo repository.SyncStateRepository
	userRepo      authrepo.UserRepository
	drivers       DriverFactory
	writer        *InteractionWriter
	timeout       time.Duration
}

func NewSyncEngine(
	contactRepo repository.ContactRepository,
	syncStateRepo repository.SyncStateRepository,
	userRepo authrepo.UserRepository,
	drivers DriverFactory,
	writer *InteractionWriter,
) *SyncEngine {
	return &SyncEngine{
		contactRepo:   contactRepo,
		syncStateRepo: syncStateRepo,
		userRepo:      userRepo,
		drivers:       drivers,
		writer:        writer,
		timeout:       defaultSyncTimeout,
	}
}

// SyncContactEmails syncs one contact when contactID is set, otherwise the
// user's active contacts up to the batch limit. forceHistoric re-runs the full
// backfill even for contacts that already completed it. A contact that fails
// is logged and skipped; only an invalid user, an unknown contact, or the
// batch deadline abort the run.
func (e *SyncEngine) SyncContactEmails(ctx context.Context, userID, contactID string, forceHistoric bool) error {
	user, err := e.userRepo.FindByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	var contacts []*domain.Contact
	if contactID != "" {
		contact, err := e.contactRepo.FindByID(userID, contactID)
		if err != nil {
			return fmt.Errorf("failed to load contact: %w", err)
		}
		if contact == nil {
			return domain.ErrContactNotFound
		}
		contacts = []*domain.Contact{contact}
	} else {
		contacts, err = e.contactRepo.FindActiveByUser(userID, syncBatchLimit)
		if err != nil {
			return fmt.Errorf("failed to load contacts: %w", err)
		}
	}

	driver, err := e.drivers.DriverFor(ctx, user)
	if err != nil {
		// A broken mail account degrades to an empty sync rather than
		// blocking the batch.
		log.Printf("[SyncEngine] no usable mail driver for user %s: %v", userID, err)
		driver = nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	log.Printf("[SyncEngine] starting sync for user %s, %d contact(s)", userID, len(contacts))

	for _, contact := range contacts {
		if ierr := syncInterrupted(ctx, nil); ierr != nil {
			return fmt.Errorf("%w: %d contact(s) left unsynced", ierr, remaining(contacts, contact))
		}

		if err := e.syncContact(ctx, driver, user, contact, forceHistoric); err != nil {
			if ierr := syncInterrupted(ctx, err); ierr != nil {
				return fmt.Errorf("%w: sync of contact %s interrupted", ierr, contact.ID)
			}
			log.Printf("[SyncEngine] sync failed for contact %s: %v", contact.ID, err)
		}
	}

	return nil
}

// syncInterrupted maps a context stop to the error callers should see: the
// batch deadline becomes ErrSyncTimeout, a caller cancel stays context.Canceled.
// Ordinary per-contact failures map to nil and are handled by the batch loop.
func syncInterrupted(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ErrSyncTimeout
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	return nil
}

// syncContact runs one contact's sync and persists the resulting state. The
// state row is written even when the provider fetch failed, which marks the
// backfill as attempted and moves later runs to delta mode.
func (e *SyncEngine) syncContact(ctx context.Context, driver domain.MailDriver, user *authdomain.User, contact *domain.Contact, forceHistoric bool) error {
	state, err := e.syncStateRepo.FindByContact(contact.ID, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load sync state: %w", err)
	}

	historic := forceHistoric || state.NeedsHistoricSync()

	if state == nil {
		state = &domain.ContactEmailSyncState{
			ContactID: contact.ID,
			UserID:    user.ID,
			Stage:     domain.StageUnsynced,
		}
	}

	var since *time.Time
	if historic {
		state.Stage = domain.StageHistoricInProgress
		log.Printf("[SyncEngine] historic sync for contact %s (%s)", contact.ID, contact.Email)
	} else {
		since = state.LastSyncAt
		log.Printf("[SyncEngine] delta sync for contact %s (%s)", contact.ID, contact.Email)
	}

	lastInboxID, lastSentID, syncErr := e.fetchAndStore(ctx, driver, contact, since)

	// Abandon partial work on deadline: no state write, the next run retries.
	if errors.Is(syncErr, context.DeadlineExceeded) || ctx.Err() != nil {
		return syncErr
	}

	now := time.Now()
	state.LastSyncAt = &now
	state.HistoricSyncCompleted = true
	state.Stage = domain.StageHistoricCompleted
	if lastInboxID != "" {
		state.LastInboxMessageID = lastInboxID
	}
	if lastSentID != "" {
		state.LastSentMessageID = lastSentID
	}

	if err := e.syncStateRepo.Upsert(state); err != nil {
		return fmt.Errorf("failed to persist sync state: %w", err)
	}

	return syncErr
}

// fetchAndStore queries both folders, parses what came back and hands the
// batch to the writer. A nil driver yields an empty batch.
func (e *SyncEngine) fetchAndStore(ctx context.Context, driver domain.MailDriver, contact *domain.Contact, since *time.Time) (lastInboxID, lastSentID string, err error) {
	var emails []domain.ParsedEmail

	for _, folder := range []string{domain.FolderInbox, domain.FolderSent} {
		query := BuildQuery(contact, folder, since)
		parsed, ferr := e.searchFolder(ctx, driver, folder, query)
		emails = append(emails, parsed...)
		if ferr != nil {
			err = ferr
			break
		}
	}

	lastInboxID, lastSentID = e.writer.ProcessEmails(emails, contact)
	return lastInboxID, lastSentID, err
}

func (e *SyncEngine) searchFolder(ctx context.Context, driver domain.MailDriver, folder, query string) ([]domain.ParsedEmail, error) {
	if driver == nil {
		return nil, nil
	}

	list, err := driver.ListThreads(ctx, domain.ListThreadsParams{
		Folder:   folder,
		Query:    query,
		PageSize: searchPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s threads: %w", folder, err)
	}

	threads := list.Threads
	if len(threads) > maxThreadsPerQuery {
		threads = threads[:maxThreadsPerQuery]
	}

	var parsed []domain.ParsedEmail
	for _, ref := range threads {
		thread, err := driver.GetThread(ctx, ref.ID)
		if err != nil {
			if ctx.Err() != nil {
				return parsed, ctx.Err()
			}
			log.Printf("[SyncEngine] failed to fetch thread %s: %v", ref.ID, err)
			continue
		}

		messages := thread.Messages
		if len(messages) > maxMessagesPerThread {
			messages = messages[:maxMessagesPerThread]
		}

		for _, raw := range messages {
			if raw.ThreadID == "" {
				raw.ThreadID = ref.ID
			}
			if email := ParseEmail(raw, folder); email != nil {
				parsed = append(parsed, *email)
			}
		}
	}

	return parsed, nil
}

func remaining(contacts []*domain.Contact, current *domain.Contact) int {
	for i, c := range contacts {
		if c == current {
			return len(contacts) - i
		}
	}
	return 0
}
