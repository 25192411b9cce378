package models

import "time"

// Facetoface represents a face-to-face training activity within a course.
type Facetoface struct {
	ID               int64     `db:"id" json:"id"`
	CourseID         int64     `db:"course_id" json:"course_id"`
	Name             string    `db:"name" json:"name"`
	Description      string    `db:"description" json:"description"`
	ApprovalRequired bool      `db:"approval_required" json:"approval_required"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// NeedsApproval reports whether manager approval applies to this activity.
// Approvals must be enabled at site level and on the activity itself.
func (f *Facetoface) NeedsApproval(siteEnabled bool) bool {
	return siteEnabled && f.ApprovalRequired
}

// Course is the enclosing course an activity belongs to.
type Course struct {
	ID        int64  `db:"id" json:"id"`
	FullName  string `db:"full_name" json:"full_name"`
	ShortName string `db:"short_name" json:"short_name"`
}
