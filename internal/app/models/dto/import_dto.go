package dto

// ImportRowError reports a catalog row that was skipped or partly applied.
type ImportRowError struct {
	Row     int    `json:"row" example:"7"`
	Message string `json:"message" example:"invalid course code \"bad code\""`
}

// ImportResponse summarizes a catalog upload.
type ImportResponse struct {
	File            string           `json:"file" example:"0b8e3c1e-8d7f-4d2a-9a57-5d0a4f2e9c11.csv"`
	OriginalName    string           `json:"originalName" example:"catalog.csv"`
	DryRun          bool             `json:"dryRun"`
	Rows            int              `json:"rows"`
	ProgramsCreated int              `json:"programsCreated"`
	CoursesCreated  int              `json:"coursesCreated"`
	Groups          int              `json:"groups"`
	Members         int              `json:"members"`
	Skipped         int              `json:"skipped"`
	Errors          []ImportRowError `json:"errors"`
}
