package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	authdomain "touchbase-backend/internal/auth/domain"
	"touchbase-backend/internal/contact/domain"

	"github.com/google/uuid"
)

type fakeUserRepo struct {
	users map[string]*authdomain.User
}

func newFakeUserRepo(users ...*authdomain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*authdomain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(user *authdomain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) Update(user *authdomain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(token *authdomain.RefreshToken) error { return nil }
func (r *fakeUserRepo) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	return nil, nil
}
func (r *fakeUserRepo) DeleteRefreshToken(token string) error { return nil }

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts map[string]*domain.Contact
}

func newFakeContactRepo(contacts ...*domain.Contact) *fakeContactRepo {
	r := &fakeContactRepo{contacts: make(map[string]*domain.Contact)}
	for _, c := range contacts {
		r.contacts[c.ID] = c
	}
	return r
}

func (r *fakeContactRepo) Create(contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	r.contacts[contact.ID] = contact
	return nil
}

func (r *fakeContactRepo) FindByID(userID, id string) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	return c, nil
}

func (r *fakeContactRepo) FindByEmail(userID, email string) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.UserID == userID && c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeContactRepo) FindActiveByUser(userID string, limit int) ([]*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Contact
	for _, c := range r.contacts {
		if c.UserID == userID && c.Status == domain.ContactStatusActive {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeContactRepo) List(userID string, status domain.ContactStatus, limit, offset int) ([]*domain.Contact, int64, error) {
	var out []*domain.Contact
	for _, c := range r.contacts {
		if c.UserID == userID && (status == "" || c.Status == status) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeContactRepo) Update(contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[contact.ID] = contact
	return nil
}

func (r *fakeContactRepo) UpdateLastContactedAt(userID, contactID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[contactID]
	if !ok {
		return errors.New("contact not found")
	}
	c.LastContactedAt = &at
	return nil
}

func (r *fakeContactRepo) Delete(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contacts, id)
	return nil
}

type fakeInteractionRepo struct {
	mu           sync.Mutex
	interactions []*domain.ContactInteraction
	createErr    error
	createErrID  string // when set, createErr only fires for this message id
}

func (r *fakeInteractionRepo) Create(interaction *domain.ContactInteraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil && (r.createErrID == "" || interaction.MessageID() == r.createErrID) {
		return r.createErr
	}
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	r.interactions = append(r.interactions, interaction)
	return nil
}

func (r *fakeInteractionRepo) Exists(contactID, threadID, messageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.interactions {
		if i.ContactID == contactID && i.ThreadID == threadID && i.MessageID() == messageID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInteractionRepo) FindByContact(userID, contactID string, limit, offset int) ([]*domain.ContactInteraction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ContactInteraction
	for _, i := range r.interactions {
		if i.UserID == userID && i.ContactID == contactID {
			out = append(out, i)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeInteractionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.interactions)
}

type fakeSyncStateRepo struct {
	mu          sync.Mutex
	states      map[string]*domain.ContactEmailSyncState
	findErrFor  string // contact id whose state lookup fails
	findErrWith error
}

func newFakeSyncStateRepo(states ...*domain.ContactEmailSyncState) *fakeSyncStateRepo {
	r := &fakeSyncStateRepo{states: make(map[string]*domain.ContactEmailSyncState)}
	for _, s := range states {
		r.states[s.ContactID+"/"+s.UserID] = s
	}
	return r
}

func (r *fakeSyncStateRepo) FindByContact(contactID, userID string) (*domain.ContactEmailSyncState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErrFor != "" && r.findErrFor == contactID {
		return nil, r.findErrWith
	}
	return r.states[contactID+"/"+userID], nil
}

func (r *fakeSyncStateRepo) Upsert(state *domain.ContactEmailSyncState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state.ID == "" {
		state.ID = uuid.New().String()
	}
	r.states[state.ContactID+"/"+state.UserID] = state
	return nil
}

// fakeDriver serves scripted threads keyed by folder and records the queries
// it was asked. When block is set, calls hang until the context is done.
type fakeDriver struct {
	mu       sync.Mutex
	threads  map[string][]domain.Thread
	queries  []domain.ListThreadsParams
	block    bool
	getCalls int
}

func (d *fakeDriver) ListThreads(ctx context.Context, params domain.ListThreadsParams) (*domain.ThreadList, error) {
	if d.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	d.mu.Lock()
	d.queries = append(d.queries, params)
	threads := d.threads[params.Folder]
	d.mu.Unlock()

	list := &domain.ThreadList{}
	for i := range threads {
		list.Threads = append(list.Threads, domain.ThreadRef{
			ID: fmt.Sprintf("%s-thread-%d", params.Folder, i),
		})
	}
	return list, nil
}

func (d *fakeDriver) GetThread(ctx context.Context, threadID string) (*domain.Thread, error) {
	if d.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getCalls++

	var folder string
	var idx int
	if _, err := fmt.Sscanf(threadID, "INBOX-thread-%d", &idx); err == nil {
		folder = domain.FolderInbox
	} else if _, err := fmt.Sscanf(threadID, "SENT-thread-%d", &idx); err == nil {
		folder = domain.FolderSent
	} else {
		return nil, fmt.Errorf("unknown thread %s", threadID)
	}

	threads := d.threads[folder]
	if idx >= len(threads) {
		return nil, fmt.Errorf("unknown thread %s", threadID)
	}
	thread := threads[idx]
	return &thread, nil
}

type fakeDriverFactory struct {
	driver domain.MailDriver
	err    error
}

func (f *fakeDriverFactory) DriverFor(ctx context.Context, user *authdomain.User) (domain.MailDriver, error) {
	return f.driver, f.err
}
