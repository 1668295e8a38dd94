package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/todo-web/internal/models"
	"github.com/ytakahashi/todo-web/internal/services"
)

var priorities = []string{"High", "Medium", "Low"}

type TodoHandler struct {
	todos *services.TodoService
}

func NewTodoHandler(todos *services.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// Register mounts the list page and the form endpoints.
func (h *TodoHandler) Register(e *echo.Echo) {
	e.GET("/", h.Index)
	e.POST("/add", h.Add)
	e.POST("/toggle/:id", h.Toggle)
	e.POST("/delete/:id", h.Delete)
	e.POST("/edit/:id", h.Edit)
}

type todoRow struct {
	ID         int
	Task       string
	Priority   string
	Completed  bool
	DueAt      string
	DueDisplay string
	Editing    bool
}

type indexPage struct {
	Todos      []todoRow
	Priorities []string
}

func (h *TodoHandler) Index(c echo.Context) error {
	todos, err := h.todos.List(c.Request().Context())
	if err != nil {
		return err
	}

	editID, editing := queryInt(c, "edit")

	page := indexPage{
		Todos:      make([]todoRow, 0, len(todos)),
		Priorities: priorities,
	}
	for _, t := range todos {
		page.Todos = append(page.Todos, newTodoRow(t, editing && t.ID == editID))
	}

	return c.Render(http.StatusOK, "index.html", page)
}

func (h *TodoHandler) Add(c echo.Context) error {
	task, _ := formField(c, "task")
	priority := priorityField(c)
	dueAt := optionalField(c, "due_at")

	if _, err := h.todos.Add(c.Request().Context(), task, priority, dueAt); err != nil {
		return err
	}
	return redirectToIndex(c)
}

func (h *TodoHandler) Toggle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if _, err := h.todos.Toggle(c.Request().Context(), id); err != nil {
		return err
	}
	return redirectToIndex(c)
}

func (h *TodoHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if _, err := h.todos.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return redirectToIndex(c)
}

func (h *TodoHandler) Edit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	task, _ := formField(c, "task")
	priority := priorityField(c)
	dueAt := optionalField(c, "due_at")

	if _, err := h.todos.Edit(c.Request().Context(), id, task, priority, dueAt); err != nil {
		return err
	}
	return redirectToIndex(c)
}

func newTodoRow(t models.Todo, editing bool) todoRow {
	row := todoRow{
		ID:        t.ID,
		Task:      t.Task,
		Priority:  t.Priority,
		Completed: t.Completed,
		Editing:   editing,
	}
	if t.DueAt != nil {
		row.DueAt = *t.DueAt
	}
	if t.DueDisplay != nil {
		row.DueDisplay = *t.DueDisplay
	}
	return row
}

func redirectToIndex(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/")
}

// pathID parses the :id route parameter. Anything but a non-negative
// integer is treated as an unknown route.
func pathID(c echo.Context) (int, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 31)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return int(id), nil
}

func queryInt(c echo.Context, key string) (int, bool) {
	n, err := strconv.Atoi(c.QueryParam(key))
	if err != nil {
		return 0, false
	}
	return n, true
}

// formField returns the first value of a body form field and whether the
// field was sent at all. Query parameters are not consulted.
func formField(c echo.Context, key string) (string, bool) {
	var params url.Values
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return "", false
		}
		params = form.Value
	} else {
		if err := req.ParseForm(); err != nil {
			return "", false
		}
		params = req.PostForm
	}
	values, ok := params[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// priorityField defaults only a missing field; an empty value is kept.
func priorityField(c echo.Context) string {
	if v, ok := formField(c, "priority"); ok {
		return v
	}
	return models.DefaultPriority
}

func optionalField(c echo.Context, key string) *string {
	v, ok := formField(c, key)
	if !ok {
		return nil
	}
	return &v
}
