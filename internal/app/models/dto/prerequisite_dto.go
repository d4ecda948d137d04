package dto

import "github.com/curriculum/planner/internal/app/models"

// AddPrerequisiteRequest links a simple prerequisite to a course
type AddPrerequisiteRequest struct {
	PrereqCourseID int64 `json:"prereqCourseId" binding:"required,min=1" example:"1"`
}

// CreateGroupRequest creates an AND/OR prerequisite group
type CreateGroupRequest struct {
	Kind            string  `json:"kind" binding:"required" example:"OR"`
	MemberCourseIDs []int64 `json:"memberCourseIds" binding:"required,min=1,dive,min=1"`
}

// CourseRefResponse is a short course reference
type CourseRefResponse struct {
	ID   int64  `json:"id" example:"1"`
	Code string `json:"code" example:"CS101"`
	Name string `json:"name" example:"Intro to CS"`
}

// GroupResponse is a prerequisite group with its members
type GroupResponse struct {
	ID      int64               `json:"id"`
	Kind    models.GroupKind    `json:"kind" example:"OR"`
	Members []CourseRefResponse `json:"members"`
}

// RequirementResponse is the full prerequisite structure of a course
type RequirementResponse struct {
	CourseID int64               `json:"courseId"`
	Simple   []CourseRefResponse `json:"simple"`
	Groups   []GroupResponse     `json:"groups"`
}

// CreatedResponse returns the id of a created row
type CreatedResponse struct {
	ID int64 `json:"id" example:"1"`
}

func newCourseRefResponses(refs []models.CourseRef) []CourseRefResponse {
	out := make([]CourseRefResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, CourseRefResponse{ID: r.ID, Code: r.Code, Name: r.Name})
	}
	return out
}

// NewGroupResponse maps a prerequisite group
func NewGroupResponse(g *models.PrerequisiteGroup) GroupResponse {
	return GroupResponse{ID: g.ID, Kind: g.Kind, Members: newCourseRefResponses(g.Members)}
}

// NewRequirementResponse maps a course requirement
func NewRequirementResponse(r *models.Requirement) *RequirementResponse {
	groups := make([]GroupResponse, 0, len(r.Groups))
	for _, g := range r.Groups {
		groups = append(groups, NewGroupResponse(g))
	}
	return &RequirementResponse{
		CourseID: r.CourseID,
		Simple:   newCourseRefResponses(r.Simple),
		Groups:   groups,
	}
}
