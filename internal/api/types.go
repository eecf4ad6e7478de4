package api

// Project is the project resource as the backend returns it. Task and item
// lists travel as JSON-encoded text fields.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Client string `json:"client,omitempty"`
	Status string `json:"status,omitempty"`
	Tasks  string `json:"tasks,omitempty"`
	Items  string `json:"items,omitempty"`
}

// PaginatedResponse is the envelope of list endpoints.
type PaginatedResponse[T any] struct {
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
}

// UpdateProjectRequest is the PATCH body for a project. Nil fields are left
// untouched by the backend.
type UpdateProjectRequest struct {
	Tasks *string `json:"tasks,omitempty"`
	Items *string `json:"items,omitempty"`
}
