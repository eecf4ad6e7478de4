package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hy4ri/shopfloor/internal/api"
	"github.com/hy4ri/shopfloor/internal/model"
	"go.uber.org/zap"
)

// Remote reads and writes lists through the REST backend. Lists are stored
// on the project resource as JSON-encoded text fields and written with PATCH.
type Remote struct {
	client *api.Client
	log    *zap.Logger
}

// NewRemote wraps an API client.
func NewRemote(client *api.Client, log *zap.Logger) *Remote {
	if log == nil {
		log = zap.NewNop()
	}
	return &Remote{client: client, log: log}
}

// Projects implements Store.
func (r *Remote) Projects(ctx context.Context) ([]model.Project, error) {
	remote, err := r.client.GetProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Project, 0, len(remote))
	for _, p := range remote {
		out = append(out, fromAPIProject(p))
	}
	return out, nil
}

// Project implements Store.
func (r *Remote) Project(ctx context.Context, id string) (model.Project, error) {
	p, err := r.get(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	return fromAPIProject(*p), nil
}

// PutProject implements Store.
func (r *Remote) PutProject(ctx context.Context, p model.Project) error {
	_, err := r.client.PutProject(ctx, api.Project{
		ID:     p.ID,
		Name:   p.Name,
		Client: p.Client,
		Status: p.Status,
	})
	return err
}

// Tasks implements Store.
func (r *Remote) Tasks(ctx context.Context, projectID string) ([]model.Task, error) {
	p, err := r.get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := model.DecodeTasks([]byte(p.Tasks))
	if err != nil {
		r.log.Warn("discarding malformed task list", zap.String("project", projectID), zap.Error(err))
	}
	return tasks, nil
}

// SaveTasks implements Store.
func (r *Remote) SaveTasks(ctx context.Context, projectID string, tasks []model.Task) error {
	raw, err := model.EncodeTasks(tasks)
	if err != nil {
		return err
	}
	return r.mapErr(projectID, r.client.UpdateProjectTasks(ctx, projectID, string(raw)))
}

// Items implements Store.
func (r *Remote) Items(ctx context.Context, projectID string) ([]model.LineItem, error) {
	p, err := r.get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	items, err := model.DecodeItems([]byte(p.Items))
	if err != nil {
		r.log.Warn("discarding malformed item list", zap.String("project", projectID), zap.Error(err))
	}
	return items, nil
}

// SaveItems implements Store.
func (r *Remote) SaveItems(ctx context.Context, projectID string, items []model.LineItem) error {
	raw, err := model.EncodeItems(items)
	if err != nil {
		return err
	}
	return r.mapErr(projectID, r.client.UpdateProjectItems(ctx, projectID, string(raw)))
}

// Close implements Store.
func (r *Remote) Close() error {
	return nil
}

func (r *Remote) get(ctx context.Context, id string) (*api.Project, error) {
	p, err := r.client.GetProject(ctx, id)
	if err != nil {
		return nil, r.mapErr(id, err)
	}
	return p, nil
}

// mapErr turns a 404 into ErrNotFound and leaves other errors intact.
func (r *Remote) mapErr(id string, err error) error {
	if err == nil {
		return nil
	}
	if apiErr, ok := api.AsAPIError(err); ok && apiErr.IsNotFound() {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

func fromAPIProject(p api.Project) model.Project {
	return model.Project{ID: p.ID, Name: p.Name, Client: p.Client, Status: p.Status}
}

// IsAuthError reports whether err means the session token was rejected.
func IsAuthError(err error) bool {
	apiErr, ok := api.AsAPIError(err)
	return ok && apiErr.IsUnauthorized() && !errors.Is(err, ErrNotFound)
}
