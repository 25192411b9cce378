package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openlms/facetoface-api/internal/models"
	"github.com/openlms/facetoface-api/pkg/jobs"
)

type notificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// NotificationService queues booking notices for the mail dispatcher.
// Sends are fire-and-forget: a failed enqueue or persist is logged and never
// surfaces to the booking workflow.
type NotificationService struct {
	store  notificationStore
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the service and its worker queue.
func NewNotificationService(store notificationStore, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{store: store, logger: logger}
	cfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.handle, cfg)
	return s
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// SendBookingConfirmation queues a confirmation notice for a booked user.
func (s *NotificationService) SendBookingConfirmation(facetofaceID, sessionID, userID int64, channel models.NotificationType) {
	s.enqueue(models.Notification{
		Kind:         models.NoticeBookingConfirmation,
		UserID:       userID,
		SessionID:    sessionID,
		FacetofaceID: facetofaceID,
		Channel:      channel,
	})
}

// SendCancellationNotice queues a cancellation notice for a user whose
// booking was withdrawn before the session started.
func (s *NotificationService) SendCancellationNotice(facetofaceID, sessionID, userID int64) {
	s.enqueue(models.Notification{
		Kind:         models.NoticeBookingCancellation,
		UserID:       userID,
		SessionID:    sessionID,
		FacetofaceID: facetofaceID,
		Channel:      models.NotifyBoth,
	})
}

func (s *NotificationService) enqueue(n models.Notification) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(n.Kind),
		Payload: n,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to queue notice",
			zap.String("kind", string(n.Kind)),
			zap.Int64("user_id", n.UserID),
			zap.Int64("session_id", n.SessionID),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
	return s.store.Insert(ctx, &n)
}
