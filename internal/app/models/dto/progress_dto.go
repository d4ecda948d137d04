package dto

import (
	"time"

	"github.com/curriculum/planner/internal/app/models"
)

// SetProgressRequest sets the status of one course in the caller's plan
type SetProgressRequest struct {
	Status models.ProgressStatus `json:"status" binding:"required,oneof=planned in_progress completed" example:"completed"`
}

// ProgressResponse is one progress record
type ProgressResponse struct {
	ID         int64                 `json:"id"`
	UserID     int64                 `json:"userId"`
	CourseID   int64                 `json:"courseId"`
	CourseCode string                `json:"courseCode,omitempty" example:"CS101"`
	CourseName string                `json:"courseName,omitempty" example:"Intro to CS"`
	Status     models.ProgressStatus `json:"status" example:"completed"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// NewProgressResponse maps a progress record
func NewProgressResponse(p *models.StudentProgress) *ProgressResponse {
	resp := &ProgressResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		CourseID:  p.CourseID,
		Status:    p.Status,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Course != nil {
		resp.CourseCode = p.Course.Code
		resp.CourseName = p.Course.Name
	}
	return resp
}

// NewProgressResponses maps a slice of progress records
func NewProgressResponses(items []*models.StudentProgress) []*ProgressResponse {
	out := make([]*ProgressResponse, 0, len(items))
	for _, p := range items {
		out = append(out, NewProgressResponse(p))
	}
	return out
}
