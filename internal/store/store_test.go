package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hy4ri/shopfloor/internal/api"
	"github.com/hy4ri/shopfloor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	p := model.Project{ID: "prj-test", Name: "Test bench", Status: "active"}
	require.NoError(t, s.PutProject(ctx, p))

	got, err := s.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	tasks, err := s.Tasks(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	want := []model.Task{
		{Title: "Sand", Checked: true, Subtasks: []model.Subtask{{Title: "120 grit", Checked: true}}},
		{Title: "Oil", Subtasks: []model.Subtask{}},
	}
	require.NoError(t, s.SaveTasks(ctx, p.ID, want))
	// Saving the same snapshot twice leaves the same state.
	require.NoError(t, s.SaveTasks(ctx, p.ID, want))

	tasks, err = s.Tasks(ctx, p.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(want, tasks); diff != "" {
		t.Errorf("tasks (-want +got):\n%s", diff)
	}

	items := []model.LineItem{
		{Item: "Oak", Price: "14.50", Budget: "15", Quantity: "10"},
		{Item: "Fixings", Price: "12", Quantity: "abc"},
	}
	require.NoError(t, s.SaveItems(ctx, p.ID, items))
	gotItems, err := s.Items(ctx, p.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(items, gotItems); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}

	_, err = s.Tasks(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound), "unknown project: %v", err)

	projects, err := s.Projects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory(nil))
}

func TestMemoryStoreDoesNotAliasCallerSlices(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	require.NoError(t, m.PutProject(ctx, model.Project{ID: "p"}))

	tasks := []model.Task{{Title: "a", Subtasks: []model.Subtask{{Title: "x"}}}}
	require.NoError(t, m.SaveTasks(ctx, "p", tasks))
	tasks[0].Subtasks[0].Title = "changed"

	got, err := m.Tasks(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "x", got[0].Subtasks[0].Title)
}

func TestDemoFixture(t *testing.T) {
	ctx := context.Background()
	m, err := NewDemo(nil)
	require.NoError(t, err)

	projects, err := m.Projects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 4)

	// Tasks stored as an encoded string still decode.
	tasks, err := m.Tasks(ctx, "prj-1003")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Draw gate elevation", tasks[0].Title)

	items, err := m.Items(ctx, "prj-1002")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, model.Quantity("24"), items[0].Quantity)
	assert.Equal(t, model.Quantity("abc"), items[2].Quantity)

	// A project without lists opens empty.
	tasks, err = m.Tasks(ctx, "prj-1004")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestMalformedListDecodesEmpty(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"projects": [{"id": "p"}],
		"tasks": {"p": {"title": "not a list"}},
		"items": {"p": "garbage"}
	}`))
	require.NoError(t, err)

	m := NewMemoryFromDocument(doc, nil)
	tasks, err := m.Tasks(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, tasks)
	items, err := m.Items(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "shopfloor.json")
	f, err := OpenFile(path, nil)
	require.NoError(t, err)
	exerciseStore(t, f)

	// Reopening reads back what was written.
	reopened, err := OpenFile(path, nil)
	require.NoError(t, err)
	items, err := reopened.Items(context.Background(), "prj-test")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Oak", items[0].Item)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"quantity": 10`)
}

func TestFileStoreRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	_, err := OpenFile(path, nil)
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shopfloor.db")
	s, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	tasks, err := s.Tasks(ctx, "prj-test")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCopyDemoIntoSQLite(t *testing.T) {
	ctx := context.Background()
	demo, err := NewDemo(nil)
	require.NoError(t, err)
	dst, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer dst.Close()

	n, err := Copy(ctx, dst, demo)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	items, err := dst.Items(ctx, "prj-1001")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

// fakeBackend serves the project resource from a Memory store.
type fakeBackend struct {
	mu      sync.Mutex
	mem     *Memory
	patches int
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ctx := r.Context()

	if r.Header.Get("Authorization") != "Bearer secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.URL.Path == "/projects" {
		projects, _ := b.mem.Projects(ctx)
		resp := api.PaginatedResponse[api.Project]{}
		for _, p := range projects {
			resp.Results = append(resp.Results, api.Project{ID: p.ID, Name: p.Name, Client: p.Client, Status: p.Status})
		}
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/projects/")
	switch r.Method {
	case http.MethodPut:
		var p api.Project
		_ = json.NewDecoder(r.Body).Decode(&p)
		_ = b.mem.PutProject(ctx, model.Project{ID: id, Name: p.Name, Client: p.Client, Status: p.Status})
	case http.MethodPatch:
		b.patches++
		var req api.UpdateProjectRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, err := b.mem.Project(ctx, id); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Tasks != nil {
			tasks, _ := model.DecodeTasks([]byte(*req.Tasks))
			_ = b.mem.SaveTasks(ctx, id, tasks)
		}
		if req.Items != nil {
			items, _ := model.DecodeItems([]byte(*req.Items))
			_ = b.mem.SaveItems(ctx, id, items)
		}
	}

	p, err := b.mem.Project(ctx, id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	tasks, _ := b.mem.Tasks(ctx, id)
	items, _ := b.mem.Items(ctx, id)
	rawTasks, _ := model.EncodeTasks(tasks)
	rawItems, _ := model.EncodeItems(items)
	_ = json.NewEncoder(w).Encode(api.Project{
		ID: p.ID, Name: p.Name, Client: p.Client, Status: p.Status,
		Tasks: string(rawTasks), Items: string(rawItems),
	})
}

func TestRemoteStore(t *testing.T) {
	backend := &fakeBackend{mem: NewMemory(nil)}
	server := httptest.NewServer(backend)
	defer server.Close()

	exerciseStore(t, NewRemote(api.NewClient(server.URL, "secret"), nil))
	assert.Equal(t, 3, backend.patches)
}

func TestRemoteStoreAuthFailure(t *testing.T) {
	server := httptest.NewServer(&fakeBackend{mem: NewMemory(nil)})
	defer server.Close()

	r := NewRemote(api.NewClient(server.URL, "wrong"), nil)
	err := r.SaveTasks(context.Background(), "p", nil)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}
