package dto

// GraphResponse is a program's prerequisite graph as Cytoscape.js elements
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode wraps node data the way Cytoscape.js expects
type GraphNode struct {
	Data GraphNodeData `json:"data"`
}

// GraphNodeData identifies a course node by code
type GraphNodeData struct {
	ID    string `json:"id" example:"CS101"`
	Label string `json:"label" example:"Intro to CS"`
}

// GraphEdge wraps edge data the way Cytoscape.js expects
type GraphEdge struct {
	Data GraphEdgeData `json:"data"`
}

// GraphEdgeData points from a prerequisite to the course that requires it
type GraphEdgeData struct {
	Source string `json:"source" example:"CS101"`
	Target string `json:"target" example:"CS102"`
}
