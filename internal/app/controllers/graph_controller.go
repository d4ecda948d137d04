package controllers

import (
	"net/http"

	"github.com/curriculum/planner/internal/app/services"
	"github.com/curriculum/planner/internal/middleware"
	"github.com/gin-gonic/gin"
)

// GraphController serves prerequisite graphs
type GraphController struct {
	graphService services.GraphService
}

// NewGraphController creates a new GraphController
func NewGraphController(graphService services.GraphService) *GraphController {
	return &GraphController{graphService: graphService}
}

// GetProgramGraph returns a program's prerequisite graph as Cytoscape.js elements
// @Summary Program prerequisite graph
// @Description Nodes are courses keyed by code; edges point from a prerequisite to the course requiring it
// @Tags graph
// @Produce json
// @Param program_id path int true "Program ID"
// @Success 200 {object} dto.GraphResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid program ID"
// @Failure 404 {object} dto.ErrorResponse "Program not found or has no courses"
// @Router /graph/{program_id} [get]
func (c *GraphController) GetProgramGraph(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "program_id")
	if !ok {
		return
	}

	graph, err := c.graphService.GetProgramGraph(ctx.Request.Context(), programID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, graph)
}
