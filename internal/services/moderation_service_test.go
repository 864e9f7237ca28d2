package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"wishwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore mirrors the repository contract in memory, including the
// conditional pending-only status update.
type memStore struct {
	wishes    map[primitive.ObjectID]*models.Wish
	insertErr error
	rank      float64
}

func newMemStore() *memStore {
	return &memStore{wishes: make(map[primitive.ObjectID]*models.Wish)}
}

func (m *memStore) Insert(ctx context.Context, wish *models.Wish) (*models.Wish, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	wish.ID = primitive.NewObjectID()
	wish.Status = models.StatusPending
	wish.CreatedAt = time.Now().UTC()
	m.rank += 0.1
	wish.DisplayRank = m.rank
	m.wishes[wish.ID] = wish
	return wish, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (bool, error) {
	wish, ok := m.wishes[id]
	if !ok || wish.Status != models.StatusPending {
		return false, nil
	}
	wish.Status = status
	wish.DecidedAt = time.Now().UTC()
	return true, nil
}

func (m *memStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Wish, error) {
	wish, ok := m.wishes[id]
	if !ok {
		return nil, fmt.Errorf("wish %s: %w", id.Hex(), models.ErrNotFound)
	}
	return wish, nil
}

func (m *memStore) ListApproved(ctx context.Context) ([]models.Wish, error) {
	var approved []models.Wish
	for _, wish := range m.wishes {
		if wish.Status == models.StatusApproved {
			approved = append(approved, *wish)
		}
	}
	sort.Slice(approved, func(i, j int) bool {
		if !approved[i].CreatedAt.Equal(approved[j].CreatedAt) {
			return approved[i].CreatedAt.After(approved[j].CreatedAt)
		}
		return approved[i].DisplayRank < approved[j].DisplayRank
	})
	return approved, nil
}

func (m *memStore) CountPending(ctx context.Context) (int64, error) {
	var count int64
	for _, wish := range m.wishes {
		if wish.Status == models.StatusPending {
			count++
		}
	}
	return count, nil
}

// memBlobs counts writes so validation tests can assert nothing was stored.
type memBlobs struct {
	saved   map[string][]byte
	saveErr error
	seq     int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{saved: make(map[string][]byte)}
}

func (m *memBlobs) Save(ctx context.Context, data []byte, ext string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.seq++
	ref := fmt.Sprintf("blob-%d%s", m.seq, ext)
	m.saved[ref] = data
	return ref, nil
}

func (m *memBlobs) Load(ctx context.Context, ref string) ([]byte, error) {
	data, ok := m.saved[ref]
	if !ok {
		return nil, fmt.Errorf("image %q: %w", ref, models.ErrNotFound)
	}
	return data, nil
}

type recordingNotifier struct {
	calls []int64
	err   error
}

func (n *recordingNotifier) NotifyApproved(ctx context.Context, chatID int64, wish *models.Wish) error {
	n.calls = append(n.calls, chatID)
	return n.err
}

var testImage = []byte{0xff, 0xd8, 0xff, 0xe0}

func TestSubmitEmptyCaption(t *testing.T) {
	store := newMemStore()
	blobs := newMemBlobs()
	svc := NewModerationService(store, blobs, nil)

	for _, caption := range []string{"", "   ", "\n\t"} {
		_, err := svc.Submit(context.Background(), SubmitRequest{Message: caption, Image: testImage, ImageExt: ".jpg"})
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrValidation)
	}

	assert.Empty(t, blobs.saved, "validation failure must not write blobs")
	assert.Empty(t, store.wishes, "validation failure must not insert records")
}

func TestSubmitMissingImage(t *testing.T) {
	store := newMemStore()
	blobs := newMemBlobs()
	svc := NewModerationService(store, blobs, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{Message: "Congratulations!!!"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, blobs.saved)
	assert.Empty(t, store.wishes)
}

func TestSubmitStoresPendingWish(t *testing.T) {
	store := newMemStore()
	blobs := newMemBlobs()
	svc := NewModerationService(store, blobs, nil)

	wish, err := svc.Submit(context.Background(), SubmitRequest{
		Message:     "  Congratulations!!!  ",
		Image:       testImage,
		ImageExt:    ".jpg",
		SubmitterID: 42,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, wish.Status)
	assert.Equal(t, "Congratulations!!!", wish.Message)
	assert.Equal(t, int64(42), wish.SubmitterID)
	assert.False(t, wish.CreatedAt.IsZero())
	assert.NotZero(t, wish.DisplayRank)

	stored, err := blobs.Load(context.Background(), wish.ImageRef)
	require.NoError(t, err)
	assert.Equal(t, testImage, stored)
}

func TestSubmitBlobFailureSkipsInsert(t *testing.T) {
	store := newMemStore()
	blobs := newMemBlobs()
	blobs.saveErr = fmt.Errorf("disk full: %w", models.ErrStorage)
	svc := NewModerationService(store, blobs, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{Message: "hi", Image: testImage})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStorage)
	assert.Empty(t, store.wishes)
}

func TestSubmitInsertFailureLeavesBlobOrphaned(t *testing.T) {
	store := newMemStore()
	store.insertErr = fmt.Errorf("connection lost: %w", models.ErrStorage)
	blobs := newMemBlobs()
	svc := NewModerationService(store, blobs, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{Message: "hi", Image: testImage})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStorage)
	// The orphaned blob is acceptable collateral and is not rolled back.
	assert.Len(t, blobs.saved, 1)
	assert.Empty(t, store.wishes)
}

func TestDecideApproveIsTerminal(t *testing.T) {
	store := newMemStore()
	blobs := newMemBlobs()
	svc := NewModerationService(store, blobs, nil)

	wish, err := svc.Submit(context.Background(), SubmitRequest{Message: "Congratulations!!!", Image: testImage, ImageExt: ".jpg"})
	require.NoError(t, err)
	createdAt := wish.CreatedAt

	result, err := svc.Decide(context.Background(), wish.ID, models.DecisionApprove)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, models.StatusApproved, result.Status)

	approved, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, wish.ID, approved[0].ID)

	// A duplicate tap with the opposite verdict is a safe no-op.
	result, err = svc.Decide(context.Background(), wish.ID, models.DecisionReject)
	require.NoError(t, err)
	assert.False(t, result.Applied)

	current, err := store.Get(context.Background(), wish.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, current.Status)
	assert.Equal(t, createdAt, current.CreatedAt)
}

func TestDecideRejectHidesWish(t *testing.T) {
	store := newMemStore()
	svc := NewModerationService(store, newMemBlobs(), nil)

	wish, err := svc.Submit(context.Background(), SubmitRequest{Message: "nope", Image: testImage})
	require.NoError(t, err)

	result, err := svc.Decide(context.Background(), wish.ID, models.DecisionReject)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, models.StatusRejected, result.Status)

	approved, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestDecideUnknownWishIsNoop(t *testing.T) {
	svc := NewModerationService(newMemStore(), newMemBlobs(), nil)

	result, err := svc.Decide(context.Background(), primitive.NewObjectID(), models.DecisionApprove)
	require.NoError(t, err)
	assert.False(t, result.Applied)
}

func TestDecideUnknownDecision(t *testing.T) {
	svc := NewModerationService(newMemStore(), newMemBlobs(), nil)

	_, err := svc.Decide(context.Background(), primitive.NewObjectID(), models.Decision("ban"))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestApproveNotifiesSubmitter(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := NewModerationService(store, newMemBlobs(), notifier)

	wish, err := svc.Submit(context.Background(), SubmitRequest{Message: "hi", Image: testImage, SubmitterID: 77})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), wish.ID, models.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, []int64{77}, notifier.calls)

	// Duplicate decisions never re-notify.
	_, err = svc.Decide(context.Background(), wish.ID, models.DecisionApprove)
	require.NoError(t, err)
	assert.Len(t, notifier.calls, 1)
}

func TestRejectDoesNotNotify(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := NewModerationService(store, newMemBlobs(), notifier)

	wish, err := svc.Submit(context.Background(), SubmitRequest{Message: "hi", Image: testImage, SubmitterID: 77})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), wish.ID, models.DecisionReject)
	require.NoError(t, err)
	assert.Empty(t, notifier.calls)
}

func TestNotificationFailureDoesNotRollBack(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{err: errors.New("chat unreachable")}
	svc := NewModerationService(store, newMemBlobs(), notifier)

	wish, err := svc.Submit(context.Background(), SubmitRequest{Message: "hi", Image: testImage, SubmitterID: 77})
	require.NoError(t, err)

	result, err := svc.Decide(context.Background(), wish.ID, models.DecisionApprove)
	require.NoError(t, err)
	assert.True(t, result.Applied)

	current, err := store.Get(context.Background(), wish.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, current.Status)
}

func TestPendingCount(t *testing.T) {
	store := newMemStore()
	svc := NewModerationService(store, newMemBlobs(), nil)

	first, err := svc.Submit(context.Background(), SubmitRequest{Message: "a", Image: testImage})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), SubmitRequest{Message: "b", Image: testImage})
	require.NoError(t, err)

	count, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = svc.Decide(context.Background(), first.ID, models.DecisionApprove)
	require.NoError(t, err)

	count, err = svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
