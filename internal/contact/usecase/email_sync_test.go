package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	authdomain "touchbase-backend/internal/auth/domain"
	"touchbase-backend/internal/contact/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *authdomain.User {
	return &authdomain.User{
		ID:       "user-1",
		Email:    "me@example.com",
		Provider: "google",
	}
}

func rawMsg(id string, ts time.Time) domain.RawMessage {
	return domain.RawMessage{
		ID:           id,
		Subject:      "subject " + id,
		From:         "alice@example.com",
		To:           []string{"me@example.com"},
		InternalDate: ts.UnixMilli(),
	}
}

type engineFixture struct {
	engine          *SyncEngine
	contactRepo     *fakeContactRepo
	interactionRepo *fakeInteractionRepo
	syncStateRepo   *fakeSyncStateRepo
	driver          *fakeDriver
}

func newEngineFixture(t *testing.T, driver *fakeDriver, contacts []*domain.Contact, states []*domain.ContactEmailSyncState) *engineFixture {
	t.Helper()

	contactRepo := newFakeContactRepo(contacts...)
	interactionRepo := &fakeInteractionRepo{}
	syncStateRepo := newFakeSyncStateRepo(states...)
	userRepo := newFakeUserRepo(testUser())
	writer := NewInteractionWriter(interactionRepo, contactRepo)

	// A typed nil inside the interface would dodge the engine's nil check
	factory := &fakeDriverFactory{}
	if driver != nil {
		factory.driver = driver
	}

	engine := NewSyncEngine(contactRepo, syncStateRepo, userRepo, factory, writer)

	return &engineFixture{
		engine:          engine,
		contactRepo:     contactRepo,
		interactionRepo: interactionRepo,
		syncStateRepo:   syncStateRepo,
		driver:          driver,
	}
}

func TestSyncContactEmailsHistoricFirstRun(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	driver := &fakeDriver{threads: map[string][]domain.Thread{
		domain.FolderInbox: {
			{Messages: []domain.RawMessage{rawMsg("in-1", base), rawMsg("in-2", base.Add(time.Hour))}},
		},
		domain.FolderSent: {
			{Messages: []domain.RawMessage{rawMsg("out-1", base.Add(30 * time.Minute))}},
		},
	}}
	f := newEngineFixture(t, driver, []*domain.Contact{testContact()}, nil)

	err := f.engine.SyncContactEmails(context.Background(), "user-1", "contact-1", false)
	require.NoError(t, err)

	// Historic queries carry no time bound
	require.Len(t, driver.queries, 2)
	assert.Equal(t, "from:alice@example.com", driver.queries[0].Query)
	assert.Equal(t, "to:alice@example.com OR cc:alice@example.com OR bcc:alice@example.com", driver.queries[1].Query)

	assert.Equal(t, 3, f.interactionRepo.count())

	state, err := f.syncStateRepo.FindByContact("contact-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.HistoricSyncCompleted)
	assert.Equal(t, domain.StageHistoricCompleted, state.Stage)
	require.NotNil(t, state.LastSyncAt)
	assert.Equal(t, "in-2", state.LastInboxMessageID)
	assert.Equal(t, "out-1", state.LastSentMessageID)
}

func TestSyncContactEmailsDeltaAfterHistoric(t *testing.T) {
	lastSync := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	driver := &fakeDriver{threads: map[string][]domain.Thread{}}
	f := newEngineFixture(t, driver,
		[]*domain.Contact{testContact()},
		[]*domain.ContactEmailSyncState{{
			ID:                    "state-1",
			ContactID:             "contact-1",
			UserID:                "user-1",
			LastSyncAt:            &lastSync,
			HistoricSyncCompleted: true,
			Stage:                 domain.StageHistoricCompleted,
		}},
	)

	err := f.engine.SyncContactEmails(context.Background(), "user-1", "contact-1", false)
	require.NoError(t, err)

	require.Len(t, driver.queries, 2)
	assert.Equal(t, fmt.Sprintf("from:alice@example.com after:%d", lastSync.Unix()), driver.queries[0].Query)
	assert.Equal(t, fmt.Sprintf("to:alice@example.com OR cc:alice@example.com after:%d", lastSync.Unix()), driver.queries[1].Query)
}

func TestSyncContactEmailsForceHistoric(t *testing.T) {
	lastSync := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	driver := &fakeDriver{threads: map[string][]domain.Thread{}}
	f := newEngineFixture(t, driver,
		[]*domain.Contact{testContact()},
		[]*domain.ContactEmailSyncState{{
			ID:                    "state-1",
			ContactID:             "contact-1",
			UserID:                "user-1",
			LastSyncAt:            &lastSync,
			HistoricSyncCompleted: true,
			Stage:                 domain.StageHistoricCompleted,
		}},
	)

	err := f.engine.SyncContactEmails(context.Background(), "user-1", "contact-1", true)
	require.NoError(t, err)

	require.Len(t, driver.queries, 2)
	assert.NotContains(t, driver.queries[0].Query, "after:")
	assert.NotContains(t, driver.queries[1].Query, "after:")
}

func TestSyncContactEmailsBatchCapped(t *testing.T) {
	driver := &fakeDriver{threads: map[string][]domain.Thread{}}

	var contacts []*domain.Contact
	for i := 0; i < 8; i++ {
		contacts = append(contacts, &domain.Contact{
			ID:     fmt.Sprintf("contact-%d", i),
			UserID: "user-1",
			Email:  fmt.Sprintf("c%d@example.com", i),
			Status: domain.ContactStatusActive,
		})
	}
	f := newEngineFixture(t, driver, contacts, nil)

	err := f.engine.SyncContactEmails(context.Background(), "user-1", "", false)
	require.NoError(t, err)

	// Two folder queries per contact, at most five contacts per batch
	assert.Len(t, driver.queries, 2*syncBatchLimit)
}

func TestSyncContactEmailsUnknownContact(t *testing.T) {
	driver := &fakeDriver{threads: map[string][]domain.Thread{}}
	f := newEngineFixture(t, driver, nil, nil)

	err := f.engine.SyncContactEmails(context.Background(), "user-1", "ghost", false)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestSyncContactEmailsUnknownUser(t *testing.T) {
	driver := &fakeDriver{threads: map[string][]domain.Thread{}}
	f := newEngineFixture(t, driver, []*domain.Contact{testContact()}, nil)

	err := f.engine.SyncContactEmails(context.Background(), "ghost", "contact-1", false)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSyncContactEmailsTimeout(t *testing.T) {
	driver := &fakeDriver{block: true}
	f := newEngineFixture(t, driver, []*domain.Contact{testContact()}, nil)
	f.engine.timeout = 50 * time.Millisecond

	start := time.Now()
	err := f.engine.SyncContactEmails(context.Background(), "user-1", "contact-1", false)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, domain.ErrSyncTimeout)
	assert.Less(t, elapsed, 5*time.Second)

	// Interrupted contact keeps no state, the next run retries from scratch
	state, serr := f.syncStateRepo.FindByContact("contact-1", "user-1")
	require.NoError(t, serr)
	assert.Nil(t, state)
}

func TestSyncContactEmailsFailingContactDoesNotPoisonBatch(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	driver := &fakeDriver{threads: map[string][]domain.Thread{
		domain.FolderInbox: {
			{Messages: []domain.RawMessage{rawMsg("in-1", base)}},
		},
	}}

	contacts := []*domain.Contact{
		{ID: "contact-a", UserID: "user-1", Email: "a@example.com", Status: domain.ContactStatusActive},
		{ID: "contact-b", UserID: "user-1", Email: "b@example.com", Status: domain.ContactStatusActive},
		{ID: "contact-c", UserID: "user-1", Email: "c@example.com", Status: domain.ContactStatusActive},
	}
	f := newEngineFixture(t, driver, contacts, nil)
	f.syncStateRepo.findErrFor = "contact-b"
	f.syncStateRepo.findErrWith = fmt.Errorf("sync state table unavailable")

	err := f.engine.SyncContactEmails(context.Background(), "user-1", "", false)
	require.NoError(t, err)

	// The healthy contacts completed their runs
	for _, id := range []string{"contact-a", "contact-c"} {
		state, serr := f.syncStateRepo.FindByContact(id, "user-1")
		require.NoError(t, serr)
		require.NotNil(t, state, "contact %s should have sync state", id)
		assert.True(t, state.HistoricSyncCompleted)
	}
	assert.Equal(t, 2, f.interactionRepo.count())

	// The failed contact recorded nothing and stays due for a backfill
	_, serr := f.syncStateRepo.FindByContact("contact-b", "user-1")
	assert.Error(t, serr)
}

func TestSyncContactEmailsCallerCancelIsNotTimeout(t *testing.T) {
	driver := &fakeDriver{block: true}
	f := newEngineFixture(t, driver, []*domain.Contact{testContact()}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := f.engine.SyncContactEmails(ctx, "user-1", "contact-1", false)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrSyncTimeout)
}

func TestSyncContactEmailsThreadFanOutCapped(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	var inboxThreads []domain.Thread
	for i := 0; i < maxThreadsPerQuery+7; i++ {
		inboxThreads = append(inboxThreads, domain.Thread{
			Messages: []domain.RawMessage{rawMsg(fmt.Sprintf("in-%d", i), base.Add(time.Duration(i)*time.Minute))},
		})
	}
	driver := &fakeDriver{threads: map[string][]domain.Thread{
		domain.FolderInbox: inboxThreads,
	}}
	f := newEngineFixture(t, driver, []*domain.Contact{testContact()}, nil)

	err := f.engine.SyncContactEmails(context.Background(), "user-1", "contact-1", false)
	require.NoError(t, err)

	assert.Equal(t, maxThreadsPerQuery, driver.getCalls)
	assert.Equal(t, maxThreadsPerQuery, f.interactionRepo.count())
}

func TestSyncContactEmailsMessageFanOutCapped(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	var messages []domain.RawMessage
	for i := 0; i < maxMessagesPerThread+5; i++ {
		messages = append(messages, rawMsg(fmt.Sprintf("in-%d", i), base.Add(time.Duration(i)*time.Minute)))
	}
	driver := &fakeDriver{threads: map[string][]domain.Thread{
		domain.FolderInbox: {{Messages: messages}},
	}}
	f := newEngineFixture(t, driver, []*domain.Contact{testContact()}, nil)

	err := f.engine.SyncContactEmails(context.Background(), "user-1", "contact-1", false)
	require.NoError(t, err)

	assert.Equal(t, maxMessagesPerThread, f.interactionRepo.count())
}

func TestSyncContactEmailsNoDriverDegradesToEmpty(t *testing.T) {
	f := newEngineFixture(t, nil, []*domain.Contact{testContact()}, nil)

	err := f.engine.SyncContactEmails(context.Background(), "user-1", "contact-1", false)
	require.NoError(t, err)

	assert.Equal(t, 0, f.interactionRepo.count())

	// The attempt still completes the backfill bookkeeping
	state, serr := f.syncStateRepo.FindByContact("contact-1", "user-1")
	require.NoError(t, serr)
	require.NotNil(t, state)
	assert.True(t, state.HistoricSyncCompleted)
}

func TestSyncContactEmailsRerunAddsNothing(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	driver := &fakeDriver{threads: map[string][]domain.Thread{
		domain.FolderInbox: {
			{Messages: []domain.RawMessage{rawMsg("in-1", base)}},
		},
	}}
	f := newEngineFixture(t, driver, []*domain.Contact{testContact()}, nil)

	require.NoError(t, f.engine.SyncContactEmails(context.Background(), "user-1", "contact-1", false))
	require.NoError(t, f.engine.SyncContactEmails(context.Background(), "user-1", "contact-1", true))

	assert.Equal(t, 1, f.interactionRepo.count())
}
