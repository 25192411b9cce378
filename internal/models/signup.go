package models

import (
	"strings"
	"time"
)

// SignupStatus is the ordered signup state code. Higher codes supersede lower
// ones; cancellation states sit below the approval threshold.
type SignupStatus int

const (
	StatusUserCancelled     SignupStatus = 10
	StatusSessionCancelled  SignupStatus = 20
	StatusDeclined          SignupStatus = 30
	StatusRequested         SignupStatus = 40
	StatusApproved          SignupStatus = 50
	StatusWaitlisted        SignupStatus = 60
	StatusBooked            SignupStatus = 70
	StatusNoShow            SignupStatus = 80
	StatusPartiallyAttended SignupStatus = 90
	StatusFullyAttended     SignupStatus = 100
)

var statusLabels = map[SignupStatus]string{
	StatusUserCancelled:     "user_cancelled",
	StatusSessionCancelled:  "session_cancelled",
	StatusDeclined:          "declined",
	StatusRequested:         "requested",
	StatusApproved:          "approved",
	StatusWaitlisted:        "waitlisted",
	StatusBooked:            "booked",
	StatusNoShow:            "no_show",
	StatusPartiallyAttended: "partially_attended",
	StatusFullyAttended:     "fully_attended",
}

// Label returns the external token for the status code.
func (s SignupStatus) Label() string {
	return statusLabels[s]
}

// StatusLabels returns the full status vocabulary keyed by code.
func StatusLabels() map[SignupStatus]string {
	out := make(map[SignupStatus]string, len(statusLabels))
	for code, label := range statusLabels {
		out[code] = label
	}
	return out
}

// StatusFromLabel resolves an external status token to its code.
func StatusFromLabel(label string) (SignupStatus, bool) {
	for code, l := range statusLabels {
		if l == label {
			return code, true
		}
	}
	return 0, false
}

// NotificationType selects how booking notices are delivered.
type NotificationType int

const (
	NotifyICal NotificationType = 1
	NotifyText NotificationType = 2
	NotifyBoth NotificationType = NotifyICal | NotifyText
)

// NotificationTypeFromToken maps an external notification token to its code.
// An empty token defaults to both channels; unknown tokens are rejected.
func NotificationTypeFromToken(token string) (NotificationType, bool) {
	switch strings.ToLower(token) {
	case "email":
		return NotifyText, true
	case "ical", "icalendar":
		return NotifyICal, true
	case "both", "":
		return NotifyBoth, true
	default:
		return 0, false
	}
}

// Signup is a user's booking state for one session.
type Signup struct {
	ID               int64            `db:"id" json:"id"`
	SessionID        int64            `db:"session_id" json:"session_id"`
	UserID           int64            `db:"user_id" json:"user_id"`
	Status           SignupStatus     `db:"status" json:"status"`
	DiscountCode     string           `db:"discount_code" json:"discount_code"`
	NotificationType NotificationType `db:"notification_type" json:"notification_type"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// SignupRequest carries everything needed to book or update one user.
type SignupRequest struct {
	SessionID        int64
	FacetofaceID     int64
	CourseID         int64
	UserID           int64
	DiscountCode     string
	NotificationType NotificationType
	Status           SignupStatus
	SuppressEmail    bool
}

// Attendee is a signup joined with user identity for attendance views.
type Attendee struct {
	UserID    int64        `db:"user_id" json:"user_id"`
	Email     string       `db:"email" json:"email"`
	FirstName string       `db:"first_name" json:"first_name"`
	LastName  string       `db:"last_name" json:"last_name"`
	Status    SignupStatus `db:"status" json:"status"`
}

// StatusLabel returns the attendee's status token.
func (a *Attendee) StatusLabel() string {
	return a.Status.Label()
}
