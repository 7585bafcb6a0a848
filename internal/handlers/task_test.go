package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"taskward/internal/auth"
	dom "taskward/internal/domain"
	"taskward/internal/dto"
	"taskward/internal/repo"
	"taskward/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// memTaskRepo is a minimal in-memory TaskRepo for routing tests. Scoping
// matches the Postgres repo: wrong owner behaves like a missing row.
type memTaskRepo struct {
	nextID int64
	tasks  map[int64]dom.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{nextID: 1, tasks: make(map[int64]dom.Task)}
}

func (r *memTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	t.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.tasks[t.ID] = t
	return t, nil
}

func (r *memTaskRepo) GetByID(_ context.Context, userID, id int64) (dom.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return dom.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *memTaskRepo) List(_ context.Context, userID int64, f dom.TaskFilter) ([]dom.Task, error) {
	var list []dom.Task
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Search != nil && !strings.Contains(strings.ToLower(t.Content), strings.ToLower(*f.Search)) {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.DueDate != nil && !t.DueDate.Equal(*f.DueDate) {
			continue
		}
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].DueDate.Equal(list[j].DueDate) {
			return list[i].DueDate.Before(list[j].DueDate)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *memTaskRepo) Update(_ context.Context, userID, id int64, patch dom.Task) (dom.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return dom.Task{}, pgx.ErrNoRows
	}
	t.Content = patch.Content
	t.Priority = patch.Priority
	t.DueDate = patch.DueDate
	r.tasks[id] = t
	return t, nil
}

func (r *memTaskRepo) ToggleCompleted(_ context.Context, userID, id int64) (dom.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return dom.Task{}, pgx.ErrNoRows
	}
	t.Completed = !t.Completed
	r.tasks[id] = t
	return t, nil
}

func (r *memTaskRepo) Delete(_ context.Context, userID, id int64) error {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(r.tasks, id)
	return nil
}

// newTaskRouter builds the task routes over the given repo with a stub
// identity middleware standing in for the session check.
func newTaskRouter(store repo.TaskRepo, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTaskHandler(service.NewTaskService(store, nil))
	g := r.Group("", func(c *gin.Context) {
		auth.SetUserID(c, userID)
		c.Next()
	})
	g.GET("/tasks", h.List)
	g.POST("/add_task", h.Add)
	g.GET("/complete_task/:id", h.Toggle)
	g.GET("/delete_task/:id", h.Delete)
	g.GET("/edit_task/:id", h.EditForm)
	g.POST("/edit_task/:id", h.Edit)
	return r
}

func doForm(r *gin.Engine, method, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func addTask(t *testing.T, r *gin.Engine, content, priority, due string) dto.TaskResponse {
	t.Helper()

	w := doForm(r, http.MethodPost, "/add_task", url.Values{
		"content":  {content},
		"priority": {priority},
		"due_date": {due},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add_task: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var resp dto.TaskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("add_task: bad response body: %v", err)
	}
	return resp
}

func listTasks(t *testing.T, r *gin.Engine, query string) []dto.TaskResponse {
	t.Helper()

	w := doGet(r, "/tasks"+query)
	if w.Code != http.StatusOK {
		t.Fatalf("tasks%s: expected 200, got %d (%s)", query, w.Code, w.Body.String())
	}
	var resp dto.ListTasksResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("tasks: bad response body: %v", err)
	}
	return resp.Items
}

func TestTaskRoutes_AddListToggleScenario(t *testing.T) {
	store := newMemTaskRepo()
	r := newTaskRouter(store, 1)

	created := addTask(t, r, "buy milk", "Low", "2025-01-01")
	if created.Content != "buy milk" || created.Priority != "Low" || created.DueDate != "2025-01-01" {
		t.Fatalf("created task differs from submitted: %+v", created)
	}
	if created.Completed {
		t.Fatalf("new task must start pending")
	}

	pending := listTasks(t, r, "?status=False")
	if len(pending) != 1 || pending[0].ID != created.ID {
		t.Fatalf("status=False: expected the new task, got %+v", pending)
	}

	w := doGet(r, "/complete_task/1")
	if w.Code != http.StatusOK {
		t.Fatalf("complete_task: expected 200, got %d", w.Code)
	}

	done := listTasks(t, r, "?status=True")
	if len(done) != 1 || done[0].ID != created.ID || !done[0].Completed {
		t.Fatalf("status=True: expected the toggled task, got %+v", done)
	}
	if remaining := listTasks(t, r, "?status=False"); len(remaining) != 0 {
		t.Fatalf("status=False: expected empty, got %+v", remaining)
	}
}

func TestTaskRoutes_InvalidFilterValuesAreRejected(t *testing.T) {
	r := newTaskRouter(newMemTaskRepo(), 1)

	for _, query := range []string{
		"?due_date=not-a-date",
		"?due_date=01-01-2025",
		"?status=banana",
		"?priority=Urgent",
	} {
		w := doGet(r, "/tasks"+query)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("tasks%s: expected 400, got %d", query, w.Code)
		}
	}
}

func TestTaskRoutes_AddValidation(t *testing.T) {
	r := newTaskRouter(newMemTaskRepo(), 1)

	missing := doForm(r, http.MethodPost, "/add_task", url.Values{
		"content": {"no priority or date"},
	})
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: expected 400, got %d", missing.Code)
	}

	badPriority := doForm(r, http.MethodPost, "/add_task", url.Values{
		"content":  {"x"},
		"priority": {"Urgent"},
		"due_date": {"2025-01-01"},
	})
	if badPriority.Code != http.StatusBadRequest {
		t.Fatalf("bad priority: expected 400, got %d", badPriority.Code)
	}

	badDate := doForm(r, http.MethodPost, "/add_task", url.Values{
		"content":  {"x"},
		"priority": {"High"},
		"due_date": {"someday"},
	})
	if badDate.Code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", badDate.Code)
	}
}

func TestTaskRoutes_DeleteIsIdempotentFailure(t *testing.T) {
	store := newMemTaskRepo()
	r := newTaskRouter(store, 1)

	addTask(t, r, "short-lived", "Medium", "2025-01-01")

	if w := doGet(r, "/delete_task/1"); w.Code != http.StatusNoContent {
		t.Fatalf("first delete: expected 204, got %d", w.Code)
	}
	if w := doGet(r, "/delete_task/1"); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", w.Code)
	}
}

func TestTaskRoutes_ForeignTasksAreInvisible(t *testing.T) {
	store := newMemTaskRepo()
	owner := newTaskRouter(store, 1)
	intruder := newTaskRouter(store, 2)

	created := addTask(t, owner, "private", "High", "2025-01-01")

	if list := listTasks(t, intruder, ""); len(list) != 0 {
		t.Fatalf("intruder list: expected empty, got %+v", list)
	}
	if w := doGet(intruder, "/complete_task/1"); w.Code != http.StatusNotFound {
		t.Fatalf("intruder toggle: expected 404, got %d", w.Code)
	}
	if w := doGet(intruder, "/delete_task/1"); w.Code != http.StatusNotFound {
		t.Fatalf("intruder delete: expected 404, got %d", w.Code)
	}
	if w := doGet(intruder, "/edit_task/1"); w.Code != http.StatusNotFound {
		t.Fatalf("intruder edit form: expected 404, got %d", w.Code)
	}
	w := doForm(intruder, http.MethodPost, "/edit_task/1", url.Values{
		"content":  {"stolen"},
		"priority": {"Low"},
		"due_date": {"2025-02-02"},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("intruder edit: expected 404, got %d", w.Code)
	}

	// Owner still sees the original.
	list := listTasks(t, owner, "")
	if len(list) != 1 || list[0].ID != created.ID || list[0].Content != "private" {
		t.Fatalf("owner list after intrusion attempts: %+v", list)
	}
}

func TestTaskRoutes_EditFlow(t *testing.T) {
	store := newMemTaskRepo()
	r := newTaskRouter(store, 1)

	addTask(t, r, "draft", "Low", "2025-01-01")

	// GET pre-fills the form with current values.
	w := doGet(r, "/edit_task/1")
	if w.Code != http.StatusOK {
		t.Fatalf("edit form: expected 200, got %d", w.Code)
	}
	var current dto.TaskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &current); err != nil {
		t.Fatalf("edit form: bad body: %v", err)
	}
	if current.Content != "draft" {
		t.Fatalf("edit form: expected current content, got %+v", current)
	}

	w = doForm(r, http.MethodPost, "/edit_task/1", url.Values{
		"content":  {"final"},
		"priority": {"High"},
		"due_date": {"2025-06-30"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var updated dto.TaskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("edit: bad body: %v", err)
	}
	if updated.Content != "final" || updated.Priority != "High" || updated.DueDate != "2025-06-30" {
		t.Fatalf("edit did not overwrite fields: %+v", updated)
	}
}

func TestTaskRoutes_SearchFilter(t *testing.T) {
	store := newMemTaskRepo()
	r := newTaskRouter(store, 1)

	addTask(t, r, "Buy MILK", "Low", "2025-01-01")
	addTask(t, r, "walk dog", "Low", "2025-01-01")

	list := listTasks(t, r, "?search=milk")
	if len(list) != 1 || list[0].Content != "Buy MILK" {
		t.Fatalf("search=milk: expected the milk task, got %+v", list)
	}
}

func TestTaskRoutes_InvalidID(t *testing.T) {
	r := newTaskRouter(newMemTaskRepo(), 1)

	for _, path := range []string{"/complete_task/abc", "/delete_task/0", "/edit_task/-5"} {
		w := doGet(r, path)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}
