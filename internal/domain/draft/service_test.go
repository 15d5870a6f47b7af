package draft

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"casepad/internal/domain/casesheet"
)

// MockStore is a mock implementation of the Store interface for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, caseID string) (*Draft, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Draft), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, draftID string) (*Draft, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Draft), args.Error(1)
}

func (m *MockStore) FindByCaseID(ctx context.Context, caseID string) (*Draft, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Draft), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, draftID string, data casesheet.Document) error {
	args := m.Called(ctx, draftID, data)
	return args.Error(0)
}

func (m *MockStore) SetCaseID(ctx context.Context, draftID, caseID string) error {
	args := m.Called(ctx, draftID, caseID)
	return args.Error(0)
}

func (m *MockStore) MarkCommitted(ctx context.Context, draftID string) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, draftID string) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

func (m *MockStore) List(ctx context.Context) ([]*Draft, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Draft), args.Error(1)
}

func TestManager_InitForCase_ReusesActiveDraft(t *testing.T) {
	store := new(MockStore)
	mgr := NewManager(store, slog.Default())

	existing := &Draft{DraftID: "d1", CaseID: "case-9", Status: StatusDraft}
	store.On("FindByCaseID", mock.Anything, "case-9").Return(existing, nil)

	first, err := mgr.InitForCase(context.Background(), "case-9")
	require.NoError(t, err)
	second, err := mgr.InitForCase(context.Background(), "case-9")
	require.NoError(t, err)

	// Idempotent per screen mount: same draft both times, no Create call.
	assert.Equal(t, first.DraftID, second.DraftID)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestManager_InitForCase_CreatesWhenNoneExists(t *testing.T) {
	store := new(MockStore)
	mgr := NewManager(store, slog.Default())

	created := &Draft{DraftID: "d2", CaseID: "case-9", Status: StatusDraft}
	store.On("FindByCaseID", mock.Anything, "case-9").Return(nil, ErrNotFound)
	store.On("Create", mock.Anything, "case-9").Return(created, nil)

	got, err := mgr.InitForCase(context.Background(), "case-9")
	require.NoError(t, err)
	assert.Equal(t, "d2", got.DraftID)

	store.AssertExpectations(t)
}

func TestManager_InitForCase_NewPatientAlwaysCreates(t *testing.T) {
	store := new(MockStore)
	mgr := NewManager(store, slog.Default())

	created := &Draft{DraftID: "d3", Status: StatusDraft}
	store.On("Create", mock.Anything, "").Return(created, nil)

	got, err := mgr.InitForCase(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "d3", got.DraftID)

	// No case id means nothing to look up.
	store.AssertNotCalled(t, "FindByCaseID", mock.Anything, mock.Anything)
}

func TestManager_Load_NotFoundIsNotAnError(t *testing.T) {
	store := new(MockStore)
	mgr := NewManager(store, slog.Default())

	store.On("Get", mock.Anything, "missing").Return(nil, ErrNotFound)

	got, err := mgr.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestManager_Save_RetriesOnceOnStorageError(t *testing.T) {
	store := new(MockStore)
	mgr := NewManager(store, slog.Default())

	data := casesheet.Document{"history": json.RawMessage(`{"allergies":"NKDA"}`)}

	store.On("Update", mock.Anything, "d1", mock.Anything).Return(errors.New("disk full")).Once()
	store.On("Update", mock.Anything, "d1", mock.Anything).Return(nil).Once()

	err := mgr.Save(context.Background(), "d1", data)
	require.NoError(t, err)
	assert.NoError(t, mgr.SaveError("d1"))

	store.AssertExpectations(t)
}

func TestManager_Save_SurfacesPersistentFailure(t *testing.T) {
	store := new(MockStore)
	mgr := NewManager(store, slog.Default())

	data := casesheet.Document{"history": json.RawMessage(`{}`)}
	store.On("Update", mock.Anything, "d1", mock.Anything).Return(errors.New("disk full"))

	err := mgr.Save(context.Background(), "d1", data)
	require.Error(t, err)

	// The failure stays visible for the "not saved" indicator until a save
	// lands.
	assert.Error(t, mgr.SaveError("d1"))
}

// serializingStore records every applied payload and fails the test if two
// Update calls ever overlap.
type serializingStore struct {
	MockStore
	mu      sync.Mutex
	active  bool
	applied []casesheet.Document
	t       *testing.T
}

func (s *serializingStore) Update(_ context.Context, _ string, data casesheet.Document) error {
	s.mu.Lock()
	if s.active {
		s.t.Error("concurrent Update calls for the same draft")
	}
	s.active = true
	s.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	s.mu.Lock()
	s.active = false
	s.applied = append(s.applied, data.Clone())
	s.mu.Unlock()
	return nil
}

func TestManager_Save_SerializesAndCoalescesWrites(t *testing.T) {
	store := &serializingStore{t: t}
	mgr := NewManager(store, slog.Default())

	const writers = 8
	var wg sync.WaitGroup
	last := casesheet.Document{"history": json.RawMessage(`{"seq":"last"}`)}

	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			doc := casesheet.Document{
				"history": json.RawMessage(`{"seq":` + string(rune('0'+i)) + `}`),
			}
			_ = mgr.Save(context.Background(), "d1", doc)
		}(i)
	}
	wg.Wait()

	// The final state must be the payload of the last submitted save.
	require.NoError(t, mgr.Save(context.Background(), "d1", last))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotEmpty(t, store.applied)
	assert.Equal(t, last, store.applied[len(store.applied)-1])
}

// ctxHonoringStore rejects writes whose context is already done, the way a
// real database driver would.
type ctxHonoringStore struct {
	MockStore
	mu      sync.Mutex
	applied []casesheet.Document
}

func (s *ctxHonoringStore) Update(ctx context.Context, _ string, data casesheet.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.applied = append(s.applied, data.Clone())
	s.mu.Unlock()
	return nil
}

func TestManager_Save_WriteOutlivesCallerContext(t *testing.T) {
	store := &ctxHonoringStore{}
	mgr := NewManager(store, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The caller's screen is gone but the payload may be carrying a
	// coalesced later save; the write still lands.
	data := casesheet.Document{"history": json.RawMessage(`{"allergies":"NKDA"}`)}
	require.NoError(t, mgr.Save(ctx, "d1", data))
	assert.NoError(t, mgr.SaveError("d1"))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.applied, 1)
	assert.Equal(t, data, store.applied[0])
}

func TestManager_Discard(t *testing.T) {
	store := new(MockStore)
	mgr := NewManager(store, slog.Default())

	store.On("Delete", mock.Anything, "d1").Return(nil)

	require.NoError(t, mgr.Discard(context.Background(), "d1"))
	store.AssertExpectations(t)
}

func TestManager_FindByCaseID_AbsentIsNil(t *testing.T) {
	store := new(MockStore)
	mgr := NewManager(store, slog.Default())

	store.On("FindByCaseID", mock.Anything, "case-1").Return(nil, ErrNotFound)

	got, err := mgr.FindByCaseID(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
