package api

import (
	"context"
	"fmt"
	"net/url"
)

// GetProjects returns all projects, following the cursor across pages.
func (c *Client) GetProjects(ctx context.Context) ([]Project, error) {
	allProjects := make([]Project, 0)
	query := url.Values{}

	for {
		var response PaginatedResponse[Project]
		if err := c.GetWithQuery(ctx, "/projects", query, &response); err != nil {
			return nil, fmt.Errorf("failed to get projects: %w", err)
		}

		allProjects = append(allProjects, response.Results...)

		if response.NextCursor == nil || *response.NextCursor == "" {
			break
		}
		query.Set("cursor", *response.NextCursor)
	}

	return allProjects, nil
}

// GetProject returns a single project by ID.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	if err := c.Get(ctx, "/projects/"+url.PathEscape(id), &project); err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	return &project, nil
}

// UpdateProject patches the given fields of a project.
func (c *Client) UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (*Project, error) {
	var project Project
	if err := c.Patch(ctx, "/projects/"+url.PathEscape(id), req, &project); err != nil {
		return nil, fmt.Errorf("failed to update project %s: %w", id, err)
	}
	return &project, nil
}

// PutProject creates or replaces a project.
func (c *Client) PutProject(ctx context.Context, p Project) (*Project, error) {
	var project Project
	if err := c.Put(ctx, "/projects/"+url.PathEscape(p.ID), p, &project); err != nil {
		return nil, fmt.Errorf("failed to put project %s: %w", p.ID, err)
	}
	return &project, nil
}

// UpdateProjectTasks replaces the task list of a project. tasksJSON is the
// encoded list; it is sent as a JSON string field.
func (c *Client) UpdateProjectTasks(ctx context.Context, id, tasksJSON string) error {
	_, err := c.UpdateProject(ctx, id, UpdateProjectRequest{Tasks: &tasksJSON})
	return err
}

// UpdateProjectItems replaces the line-item list of a project.
func (c *Client) UpdateProjectItems(ctx context.Context, id, itemsJSON string) error {
	_, err := c.UpdateProject(ctx, id, UpdateProjectRequest{Items: &itemsJSON})
	return err
}
