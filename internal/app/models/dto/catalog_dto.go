package dto

import "github.com/curriculum/planner/internal/app/models"

// CreateProgramRequest represents a new program
type CreateProgramRequest struct {
	Name string `json:"name" binding:"required,max=255" example:"BS Computer Science"`
}

// ProgramResponse represents a program
type ProgramResponse struct {
	ID   int64  `json:"id" example:"1"`
	Name string `json:"name" example:"BS Computer Science"`
}

// CourseRequest is the body for creating or replacing a course
type CourseRequest struct {
	Code        string  `json:"code" binding:"required,curriculum_code" example:"CS101"`
	Name        string  `json:"name" binding:"required,max=255" example:"Intro to CS"`
	Credits     *int    `json:"credits" binding:"omitempty,min=0,max=60" example:"4"`
	Description *string `json:"description" binding:"omitempty,max=4000"`
}

// CourseResponse represents a course
type CourseResponse struct {
	ID          int64   `json:"id" example:"1"`
	ProgramID   int64   `json:"programId" example:"1"`
	Code        string  `json:"code" example:"CS101"`
	Name        string  `json:"name" example:"Intro to CS"`
	Credits     *int    `json:"credits,omitempty" example:"4"`
	Description *string `json:"description,omitempty"`
}

// CourseListResponse is a page of courses
type CourseListResponse struct {
	Items      []*CourseResponse `json:"items"`
	Pagination PaginationInfo    `json:"pagination"`
}

// NewProgramResponse maps a program model
func NewProgramResponse(p *models.Program) *ProgramResponse {
	return &ProgramResponse{ID: p.ID, Name: p.Name}
}

// NewCourseResponse maps a course model
func NewCourseResponse(c *models.Course) *CourseResponse {
	return &CourseResponse{
		ID:          c.ID,
		ProgramID:   c.ProgramID,
		Code:        c.Code,
		Name:        c.Name,
		Credits:     c.Credits,
		Description: c.Description,
	}
}

// NewCourseResponses maps a slice of course models
func NewCourseResponses(courses []*models.Course) []*CourseResponse {
	out := make([]*CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseResponse(c))
	}
	return out
}
