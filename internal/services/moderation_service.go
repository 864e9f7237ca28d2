package services

import (
	"context"
	"fmt"
	"strings"

	"wishwall/internal/models"
	"wishwall/internal/storage"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishStore is the repository surface the workflow needs.
type WishStore interface {
	Insert(ctx context.Context, wish *models.Wish) (*models.Wish, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (bool, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Wish, error)
	ListApproved(ctx context.Context) ([]models.Wish, error)
	CountPending(ctx context.Context) (int64, error)
}

// SubmitterNotifier delivers the post-approval confirmation to a guest.
// Delivery is best-effort: a failure is logged and never propagated.
type SubmitterNotifier interface {
	NotifyApproved(ctx context.Context, chatID int64, wish *models.Wish) error
}

// SubmitRequest carries one guest submission into the workflow.
type SubmitRequest struct {
	Message     string
	Image       []byte
	ImageExt    string
	SubmitterID int64
}

// DecideResult reports what a moderator decision did.
type DecideResult struct {
	// Applied is false when the wish was unknown or already decided; the
	// caller treats that as a safe no-op, not an error.
	Applied bool
	Status  models.Status
}

// ModerationService orchestrates the wish lifecycle: intake with validation,
// the single moderation decision, and the follow-up notification.
type ModerationService struct {
	store    WishStore
	blobs    storage.BlobStore
	notifier SubmitterNotifier
}

func NewModerationService(store WishStore, blobs storage.BlobStore, notifier SubmitterNotifier) *ModerationService {
	return &ModerationService{
		store:    store,
		blobs:    blobs,
		notifier: notifier,
	}
}

// Submit validates a submission and stores it as a pending wish. The image is
// written first, then the record; if the insert fails the already-written blob
// is left orphaned rather than rolled back, since it is never reachable
// through the public listing.
func (s *ModerationService) Submit(ctx context.Context, req SubmitRequest) (*models.Wish, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("wish must have a caption: %w", models.ErrValidation)
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("wish must have a photo: %w", models.ErrValidation)
	}

	ref, err := s.blobs.Save(ctx, req.Image, req.ImageExt)
	if err != nil {
		return nil, fmt.Errorf("failed to save wish image: %w", err)
	}

	wish, err := s.store.Insert(ctx, &models.Wish{
		ImageRef:    ref,
		Message:     message,
		SubmitterID: req.SubmitterID,
	})
	if err != nil {
		logrus.WithError(err).WithField("image_ref", ref).Error("Wish insert failed, blob orphaned")
		return nil, fmt.Errorf("failed to store wish: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"wish_id":      wish.ID.Hex(),
		"submitter_id": wish.SubmitterID,
	}).Info("Wish submitted for moderation")

	return wish, nil
}

// Decide applies a moderator's verdict. The repository's conditional update is
// the concurrency control: when two decisions race on one wish, exactly one
// applies and the other comes back as a no-op.
func (s *ModerationService) Decide(ctx context.Context, id primitive.ObjectID, decision models.Decision) (DecideResult, error) {
	status, err := decision.StatusFor()
	if err != nil {
		return DecideResult{}, err
	}

	applied, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return DecideResult{}, fmt.Errorf("failed to decide wish: %w", err)
	}
	if !applied {
		logrus.WithField("wish_id", id.Hex()).Info("Decision ignored: wish unknown or already decided")
		return DecideResult{Applied: false}, nil
	}

	logrus.WithFields(logrus.Fields{
		"wish_id": id.Hex(),
		"status":  status,
	}).Info("Wish decided")

	if status == models.StatusApproved {
		s.notifySubmitter(ctx, id)
	}

	return DecideResult{Applied: true, Status: status}, nil
}

// notifySubmitter sends the approval confirmation after the transition has
// committed. Failures are logged and swallowed.
func (s *ModerationService) notifySubmitter(ctx context.Context, id primitive.ObjectID) {
	if s.notifier == nil {
		return
	}

	wish, err := s.store.Get(ctx, id)
	if err != nil {
		logrus.WithError(err).Warnf("Failed to load wish %s for approval notification", id.Hex())
		return
	}
	if wish.SubmitterID == 0 {
		return
	}

	if err := s.notifier.NotifyApproved(ctx, wish.SubmitterID, wish); err != nil {
		logrus.WithError(err).Warnf("Failed to notify submitter of wish %s", id.Hex())
	}
}

// ListApproved exposes the public listing in its contract order.
func (s *ModerationService) ListApproved(ctx context.Context) ([]models.Wish, error) {
	return s.store.ListApproved(ctx)
}

// PendingCount reports how many wishes await a decision.
func (s *ModerationService) PendingCount(ctx context.Context) (int64, error) {
	return s.store.CountPending(ctx)
}
