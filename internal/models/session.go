package models

import "time"

// SessionDate is one scheduled window of a session.
type SessionDate struct {
	ID        int64     `db:"id" json:"id"`
	SessionID int64     `db:"session_id" json:"session_id"`
	TimeStart time.Time `db:"time_start" json:"time_start"`
	TimeFinish time.Time `db:"time_finish" json:"time_finish"`
}

// Session is a scheduled instance of a face-to-face activity. A session with
// no dates has an unknown datetime and keeps signups on the waitlist.
type Session struct {
	ID            int64         `db:"id" json:"id"`
	FacetofaceID  int64         `db:"facetoface_id" json:"facetoface_id"`
	Capacity      int           `db:"capacity" json:"capacity"`
	AllowOverbook bool          `db:"allow_overbook" json:"allow_overbook"`
	DatetimeKnown bool          `db:"datetime_known" json:"datetime_known"`
	Details       string        `db:"details" json:"details"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
	Dates         []SessionDate `json:"dates"`
}

// HasStarted reports whether any date window of the session started before at.
func (s *Session) HasStarted(at time.Time) bool {
	if !s.DatetimeKnown {
		return false
	}
	for _, d := range s.Dates {
		if d.TimeStart.Before(at) {
			return true
		}
	}
	return false
}

// InProgress reports whether at falls inside any date window of the session.
func (s *Session) InProgress(at time.Time) bool {
	if !s.DatetimeKnown {
		return false
	}
	for _, d := range s.Dates {
		if d.TimeStart.Before(at) && d.TimeFinish.After(at) {
			return true
		}
	}
	return false
}
