package models

import "time"

// NotificationKind distinguishes outbound booking notices.
type NotificationKind string

const (
	NoticeBookingConfirmation NotificationKind = "booking_confirmation"
	NoticeBookingCancellation NotificationKind = "booking_cancellation"
)

// Notification is one queued outbound notice, persisted for the mail
// dispatcher to pick up.
type Notification struct {
	ID           int64            `db:"id" json:"id"`
	Kind         NotificationKind `db:"kind" json:"kind"`
	UserID       int64            `db:"user_id" json:"user_id"`
	SessionID    int64            `db:"session_id" json:"session_id"`
	FacetofaceID int64            `db:"facetoface_id" json:"facetoface_id"`
	Channel      NotificationType `db:"channel" json:"channel"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
