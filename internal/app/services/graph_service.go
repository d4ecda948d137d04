package services

import (
	"context"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/apperrors"
)

// GraphService renders a program's prerequisites as a directed graph
type GraphService interface {
	GetProgramGraph(ctx context.Context, programID int64) (*dto.GraphResponse, error)
}

type graphServiceImpl struct {
	courseRepo repositories.ICourseRepository
	prereqRepo repositories.IPrerequisiteRepository
}

// NewGraphService creates a new GraphService
func NewGraphService(courseRepo repositories.ICourseRepository, prereqRepo repositories.IPrerequisiteRepository) GraphService {
	return &graphServiceImpl{courseRepo: courseRepo, prereqRepo: prereqRepo}
}

// GetProgramGraph fails with not found when the program has no courses
func (s *graphServiceImpl) GetProgramGraph(ctx context.Context, programID int64) (*dto.GraphResponse, error) {
	courses, err := s.courseRepo.GetCoursesByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, apperrors.NewResourceNotFoundError("program not found or has no courses")
	}

	simple, err := s.prereqRepo.GetPrerequisitesByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	groups, err := s.prereqRepo.GetGroupsByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}

	return BuildGraph(courses, simple, groups), nil
}

// BuildGraph turns courses and their prerequisite rows into Cytoscape.js elements.
// Edges run prerequisite -> course, group kinds are flattened and duplicates are
// emitted once. Prerequisites from other programs get a node of their own unless
// their code is already a node.
func BuildGraph(courses []*models.Course, simple []models.Prerequisite, groups []*models.PrerequisiteGroup) *dto.GraphResponse {
	graph := &dto.GraphResponse{
		Nodes: make([]dto.GraphNode, 0, len(courses)),
		Edges: []dto.GraphEdge{},
	}

	codeByID := make(map[int64]string, len(courses))
	nodeIDs := make(map[string]bool, len(courses))
	for _, c := range courses {
		codeByID[c.ID] = c.Code
		nodeIDs[c.Code] = true
		graph.Nodes = append(graph.Nodes, dto.GraphNode{Data: dto.GraphNodeData{ID: c.Code, Label: c.Name}})
	}

	seen := make(map[dto.GraphEdgeData]bool)
	addEdge := func(prereq models.CourseRef, courseID int64) {
		target, ok := codeByID[courseID]
		if !ok {
			return
		}
		// Node ids are codes, so a course from another program sharing a code reuses the node.
		if !nodeIDs[prereq.Code] {
			nodeIDs[prereq.Code] = true
			graph.Nodes = append(graph.Nodes, dto.GraphNode{Data: dto.GraphNodeData{ID: prereq.Code, Label: prereq.Name}})
		}

		edge := dto.GraphEdgeData{Source: prereq.Code, Target: target}
		if seen[edge] {
			return
		}
		seen[edge] = true
		graph.Edges = append(graph.Edges, dto.GraphEdge{Data: edge})
	}

	for _, p := range simple {
		addEdge(p.Prereq, p.CourseID)
	}
	for _, g := range groups {
		for _, m := range g.Members {
			addEdge(m, g.CourseID)
		}
	}

	return graph
}
