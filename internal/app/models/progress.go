package models

import "time"

// ProgressStatus is the state of a student's course in their plan.
type ProgressStatus string

const (
	ProgressPlanned    ProgressStatus = "planned"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressPlanned, ProgressInProgress, ProgressCompleted:
		return true
	}
	return false
}

// StudentProgress records a user's status for one course.
type StudentProgress struct {
	ID        int64          `json:"id" db:"id"`
	UserID    int64          `json:"userId" db:"user_id"`
	CourseID  int64          `json:"courseId" db:"course_id"`
	Status    ProgressStatus `json:"status" db:"status"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`

	// Populated by list queries
	Course *CourseRef `json:"course,omitempty"`
}
