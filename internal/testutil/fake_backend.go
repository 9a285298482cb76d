package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Route names accepted by FakeBackend.Fail.
const (
	RouteIncompleteTasks = "incomplete-tasks"
	RouteProjectSprints  = "project-sprints"
	RouteSprint          = "sprint"
	RouteMoveToBacklog   = "move-to-backlog"
	RouteMoveToSprint    = "move-to-sprint"
	RouteCancelSprint    = "cancel-sprint"
	RouteDeleteSprint    = "soft-delete-sprint"
	RouteProjectTasks    = "project-tasks"
	RouteSprintTasks     = "sprint-tasks"
	RouteDeleteProject   = "delete-project"
	RouteNotification    = "create-notification"
)

// BackendRequest is one request received by a FakeBackend.
type BackendRequest struct {
	Route   string
	Method  string
	Path    string
	UserID  string
	IfMatch string
	Body    []byte
}

type backendFailure struct {
	status  int
	message string
}

// FakeBackend serves the sprint, task, project and notification endpoints
// from memory. One server stands in for all four services.
type FakeBackend struct {
	mu            sync.Mutex
	tasks         []domain.Task
	sprints       []domain.Sprint
	notifications []map[string]any
	requests      []BackendRequest
	failures      map[string]backendFailure

	server *httptest.Server
}

// NewFakeBackend starts a FakeBackend that is shut down when t completes.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{failures: make(map[string]backendFailure)}
	b.server = httptest.NewServer(b.Router())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the base URL for every service.
func (b *FakeBackend) URL() string { return b.server.URL }

func (b *FakeBackend) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/api/sprints", func(r chi.Router) {
		r.Get("/project/{projectID}", b.handle(RouteProjectSprints, b.projectSprints))
		r.Put("/move-specific-tasks-to-backlog", b.handle(RouteMoveToBacklog, b.moveToBacklog))
		r.Put("/move-specific-tasks-to-sprint/{sprintID}", b.handle(RouteMoveToSprint, b.moveToSprint))
		r.Get("/{sprintID}", b.handle(RouteSprint, b.sprint))
		r.Get("/{sprintID}/incomplete-tasks", b.handle(RouteIncompleteTasks, b.incompleteTasks))
		r.Put("/{sprintID}/cancel", b.handle(RouteCancelSprint, b.transition(domain.SprintCancelled)))
		r.Put("/{sprintID}/soft-delete", b.handle(RouteDeleteSprint, b.transition(domain.SprintDeleted)))
	})
	r.Get("/api/tasks/project/{projectID}", b.handle(RouteProjectTasks, b.projectTasks))
	r.Get("/api/tasks/sprint/{sprintID}", b.handle(RouteSprintTasks, b.sprintTasks))
	r.Delete("/api/projects/{projectID}", b.handle(RouteDeleteProject, b.deleteProject))
	r.Post("/api/notifications/create", b.handle(RouteNotification, b.createNotification))

	return r
}

// AddTasks stores tasks. Incomplete-task lookups use each task's SprintID.
func (b *FakeBackend) AddTasks(tasks ...domain.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, tasks...)
}

func (b *FakeBackend) AddSprints(sprints ...domain.Sprint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sprints = append(b.sprints, sprints...)
}

// Fail makes every later call to route respond with status and an error
// envelope carrying message.
func (b *FakeBackend) Fail(route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = backendFailure{status: status, message: message}
}

// Requests returns the requests received so far, in order.
func (b *FakeBackend) Requests() []BackendRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// Routes returns just the route names of Requests.
func (b *FakeBackend) Routes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.requests))
	for i, r := range b.requests {
		out[i] = r.Route
	}
	return out
}

// Sprint returns the stored sprint with id.
func (b *FakeBackend) Sprint(id string) (domain.Sprint, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sp := range b.sprints {
		if sp.ID == id {
			return sp, true
		}
	}
	return domain.Sprint{}, false
}

// Task returns the stored task with id.
func (b *FakeBackend) Task(id string) (domain.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// Notifications returns the decoded bodies of delivered notifications.
func (b *FakeBackend) Notifications() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.notifications)
}

func (b *FakeBackend) handle(route string, fn func(w http.ResponseWriter, r *http.Request, body []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		b.requests = append(b.requests, BackendRequest{
			Route:   route,
			Method:  r.Method,
			Path:    r.URL.Path,
			UserID:  r.Header.Get("X-User-Id"),
			IfMatch: strings.Trim(r.Header.Get("If-Match"), `"`),
			Body:    body,
		})
		failure, failing := b.failures[route]
		b.mu.Unlock()

		if failing {
			writeEnvelope(w, failure.status, "ERROR", nil, failure.message)
			return
		}
		fn(w, r, body)
	}
}

func (b *FakeBackend) projectSprints(w http.ResponseWriter, r *http.Request, _ []byte) {
	projectID := chi.URLParam(r, "projectID")
	b.mu.Lock()
	out := []any{}
	for _, sp := range b.sprints {
		if sp.ProjectID == projectID {
			out = append(out, sprintJSON(sp))
		}
	}
	b.mu.Unlock()
	writeEnvelope(w, http.StatusOK, "SUCCESS", out, "")
}

func (b *FakeBackend) sprint(w http.ResponseWriter, r *http.Request, _ []byte) {
	sp, ok := b.Sprint(chi.URLParam(r, "sprintID"))
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "ERROR", nil, "Sprint not found")
		return
	}
	w.Header().Set("ETag", strconv.Quote(sp.Version))
	writeEnvelope(w, http.StatusOK, "SUCCESS", sprintJSON(sp), "")
}

func (b *FakeBackend) incompleteTasks(w http.ResponseWriter, r *http.Request, _ []byte) {
	sprintID := chi.URLParam(r, "sprintID")
	b.mu.Lock()
	out := []any{}
	for _, t := range b.tasks {
		if t.SprintID == sprintID && t.Incomplete() {
			out = append(out, taskJSON(t))
		}
	}
	b.mu.Unlock()
	writeEnvelope(w, http.StatusOK, "SUCCESS", out, "")
}

func (b *FakeBackend) moveToBacklog(w http.ResponseWriter, r *http.Request, body []byte) {
	b.moveTasks(w, body, "")
}

func (b *FakeBackend) moveToSprint(w http.ResponseWriter, r *http.Request, body []byte) {
	b.moveTasks(w, body, chi.URLParam(r, "sprintID"))
}

func (b *FakeBackend) moveTasks(w http.ResponseWriter, body []byte, sprintID string) {
	var req struct {
		TaskIDs []string `json:"taskIds"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "ERROR", nil, "invalid request body")
		return
	}
	b.mu.Lock()
	for i := range b.tasks {
		if slices.Contains(req.TaskIDs, b.tasks[i].ID) {
			b.tasks[i].SprintID = sprintID
		}
	}
	b.mu.Unlock()
	writeEnvelope(w, http.StatusOK, "SUCCESS", nil, "Tasks moved")
}

func (b *FakeBackend) transition(to domain.SprintStatus) func(http.ResponseWriter, *http.Request, []byte) {
	return func(w http.ResponseWriter, r *http.Request, _ []byte) {
		sprintID := chi.URLParam(r, "sprintID")
		ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

		b.mu.Lock()
		defer b.mu.Unlock()
		i := slices.IndexFunc(b.sprints, func(sp domain.Sprint) bool { return sp.ID == sprintID })
		if i < 0 {
			writeEnvelope(w, http.StatusNotFound, "ERROR", nil, "Sprint not found")
			return
		}
		sp := &b.sprints[i]
		if ifMatch != "" && ifMatch != sp.Version {
			writeEnvelope(w, http.StatusPreconditionFailed, "ERROR", nil, "Sprint was modified by another user")
			return
		}
		sp.Status = to
		sp.Version = nextVersion(sp.Version)
		writeEnvelope(w, http.StatusOK, "SUCCESS", sprintJSON(*sp), "")
	}
}

func (b *FakeBackend) projectTasks(w http.ResponseWriter, r *http.Request, _ []byte) {
	b.writeTasks(w, func(t domain.Task) bool { return t.ProjectID == chi.URLParam(r, "projectID") })
}

func (b *FakeBackend) sprintTasks(w http.ResponseWriter, r *http.Request, _ []byte) {
	b.writeTasks(w, func(t domain.Task) bool { return t.SprintID == chi.URLParam(r, "sprintID") })
}

func (b *FakeBackend) writeTasks(w http.ResponseWriter, keep func(domain.Task) bool) {
	b.mu.Lock()
	out := []any{}
	for _, t := range b.tasks {
		if keep(t) {
			out = append(out, taskJSON(t))
		}
	}
	b.mu.Unlock()
	writeEnvelope(w, http.StatusOK, "SUCCESS", out, "")
}

func (b *FakeBackend) deleteProject(w http.ResponseWriter, r *http.Request, _ []byte) {
	projectID := chi.URLParam(r, "projectID")
	b.mu.Lock()
	b.tasks = slices.DeleteFunc(b.tasks, func(t domain.Task) bool { return t.ProjectID == projectID })
	b.sprints = slices.DeleteFunc(b.sprints, func(sp domain.Sprint) bool { return sp.ProjectID == projectID })
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) createNotification(w http.ResponseWriter, r *http.Request, body []byte) {
	var n map[string]any
	if err := json.Unmarshal(body, &n); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "ERROR", nil, "invalid request body")
		return
	}
	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()
	writeEnvelope(w, http.StatusCreated, "SUCCESS", n, "")
}

func writeEnvelope(w http.ResponseWriter, status int, outcome string, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := map[string]any{"status": outcome}
	if data != nil {
		env["data"] = data
	}
	if message != "" {
		env["message"] = message
	}
	_ = json.NewEncoder(w).Encode(env)
}

func nextVersion(v string) string {
	n, err := strconv.Atoi(v)
	if err != nil {
		return v + ".1"
	}
	return strconv.Itoa(n + 1)
}

func timeJSON(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func taskJSON(t domain.Task) map[string]any {
	return map[string]any{
		"id":           t.ID,
		"shortKey":     t.ShortKey,
		"title":        t.Title,
		"description":  t.Description,
		"status":       string(t.Status),
		"storyPoint":   t.StoryPoints,
		"assigneeId":   t.AssigneeID,
		"assigneeName": t.AssigneeName,
		"projectId":    t.ProjectID,
		"sprintId":     t.SprintID,
		"priority":     string(t.Priority),
		"tags":         t.Tags,
		"dueDate":      timeJSON(t.DueDate),
		"createdAt":    timeJSON(t.CreatedAt),
		"updatedAt":    timeJSON(t.UpdatedAt),
		"completedAt":  timeJSON(t.CompletedAt),
	}
}

func sprintJSON(sp domain.Sprint) map[string]any {
	return map[string]any{
		"id":        sp.ID,
		"name":      sp.Name,
		"goal":      sp.Goal,
		"status":    string(sp.Status),
		"projectId": sp.ProjectID,
		"startDate": timeJSON(sp.StartDate),
		"endDate":   timeJSON(sp.EndDate),
		"version":   sp.Version,
	}
}
