package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"

	"github.com/google/uuid"
)

const maxTitleLen = 200

// ColumnForm is what the column dialog submits.
type ColumnForm struct {
	Title string `json:"title"`
}

// TaskForm is what the new-task dialog submits.
type TaskForm struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	DueDate     string          `json:"dueDate"`
	Labels      []string        `json:"labels"`
}

// TaskPatch is a partial task record; nil fields are left untouched.
type TaskPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Priority    *domain.Priority `json:"priority"`
	DueDate     *string          `json:"dueDate"`
	Status      *domain.Status   `json:"status"`
	Assignees   *[]string        `json:"assignees"`
	Labels      *[]string        `json:"labels"`
}

// BoardService implements column and task CRUD on top of the write sink.
type BoardService struct {
	sink  WriteSink
	state State
	now   func() time.Time
	newID func() string
}

func NewBoardService(sink WriteSink, state State) *BoardService {
	return &BoardService{
		sink:  sink,
		state: state,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Board returns the cached board: columns ascending by order, tasks in store order.
func (s *BoardService) Board() domain.Board {
	return domain.Board{Columns: s.state.Columns(), Tasks: s.state.Tasks()}
}

// CreateColumn appends a column at the end of the track.
func (s *BoardService) CreateColumn(ctx context.Context, form ColumnForm) (domain.Column, error) {
	title, err := validateTitle(form.Title)
	if err != nil {
		return domain.Column{}, err
	}

	col := domain.Column{
		ID:        s.newID(),
		Title:     title,
		Order:     len(s.state.Columns()),
		CreatedAt: s.now(),
	}
	b := domain.NewBatch()
	b.CreateColumn(col)
	if err := commit(ctx, s.sink, s.state, "create_column", b); err != nil {
		return domain.Column{}, err
	}
	logger.Info("column created", "column_id", col.ID, "order", col.Order)
	return col, nil
}

func (s *BoardService) RenameColumn(ctx context.Context, id string, form ColumnForm) error {
	title, err := validateTitle(form.Title)
	if err != nil {
		return err
	}
	if _, ok := findColumn(s.state.Columns(), id); !ok {
		return ErrColumnNotFound
	}

	b := domain.NewBatch()
	b.Update(domain.CollectionColumns, id, map[string]any{domain.FieldTitle: title})
	return commit(ctx, s.sink, s.state, "rename_column", b)
}

// DeleteColumn deletes the column with all of its tasks and closes the gap in
// the order sequence, in one batch.
func (s *BoardService) DeleteColumn(ctx context.Context, id string) error {
	cols := s.state.Columns()
	if _, ok := findColumn(cols, id); !ok {
		return ErrColumnNotFound
	}

	b := domain.NewBatch()
	b.Delete(domain.CollectionColumns, id)

	removed := 0
	for _, t := range s.state.Tasks() {
		if t.ColumnID == id {
			b.Delete(domain.CollectionTasks, t.ID)
			removed++
		}
	}

	pos := 0
	for _, c := range cols {
		if c.ID == id {
			continue
		}
		if c.Order != pos {
			b.Update(domain.CollectionColumns, c.ID, map[string]any{domain.FieldOrder: pos})
		}
		pos++
	}

	if err := commit(ctx, s.sink, s.state, "delete_column", b); err != nil {
		return err
	}
	logger.Info("column deleted", "column_id", id, "tasks_deleted", removed)
	return nil
}

// CreateTask adds a task to a column with status To Do.
func (s *BoardService) CreateTask(ctx context.Context, columnID string, form TaskForm) (domain.Task, error) {
	if _, ok := findColumn(s.state.Columns(), columnID); !ok {
		return domain.Task{}, ErrColumnNotFound
	}
	title, err := validateTitle(form.Title)
	if err != nil {
		return domain.Task{}, err
	}
	priority := form.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return domain.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}
	due, err := validateDueDate(form.DueDate)
	if err != nil {
		return domain.Task{}, err
	}

	task := domain.Task{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(form.Description),
		Priority:    priority,
		DueDate:     due,
		Status:      domain.StatusToDo,
		ColumnID:    columnID,
		Assignees:   []string{},
		Comments:    []domain.Comment{},
		Attachments: []domain.Attachment{},
		Labels:      domain.NormalizeNames(form.Labels),
		CreatedAt:   s.now(),
	}
	b := domain.NewBatch()
	b.CreateTask(task)
	if err := commit(ctx, s.sink, s.state, "create_task", b); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// UpdateTask writes the fields present in patch. An empty patch writes nothing.
func (s *BoardService) UpdateTask(ctx context.Context, id string, patch TaskPatch) error {
	if _, ok := s.task(id); !ok {
		return ErrTaskNotFound
	}

	fields := map[string]any{}
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return err
		}
		fields[domain.FieldTitle] = title
	}
	if patch.Description != nil {
		fields[domain.FieldDescription] = strings.TrimSpace(*patch.Description)
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return fmt.Errorf("%w: unknown priority %q", ErrValidation, *patch.Priority)
		}
		fields[domain.FieldPriority] = *patch.Priority
	}
	if patch.DueDate != nil {
		due, err := validateDueDate(*patch.DueDate)
		if err != nil {
			return err
		}
		fields[domain.FieldDueDate] = due
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
		}
		fields[domain.FieldStatus] = *patch.Status
	}
	if patch.Assignees != nil {
		fields[domain.FieldAssignees] = domain.NormalizeNames(*patch.Assignees)
	}
	if patch.Labels != nil {
		fields[domain.FieldLabels] = domain.NormalizeNames(*patch.Labels)
	}
	if len(fields) == 0 {
		return nil
	}

	b := domain.NewBatch()
	b.Update(domain.CollectionTasks, id, fields)
	return commit(ctx, s.sink, s.state, "update_task", b)
}

func (s *BoardService) DeleteTask(ctx context.Context, id string) error {
	if _, ok := s.task(id); !ok {
		return ErrTaskNotFound
	}
	b := domain.NewBatch()
	b.Delete(domain.CollectionTasks, id)
	return commit(ctx, s.sink, s.state, "delete_task", b)
}

// AddComment appends a comment by author to the task.
func (s *BoardService) AddComment(ctx context.Context, taskID, author, content string) (domain.Comment, error) {
	task, ok := s.task(taskID)
	if !ok {
		return domain.Comment{}, ErrTaskNotFound
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, fmt.Errorf("%w: comment is empty", ErrValidation)
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = "anonymous"
	}

	c := domain.Comment{ID: s.newID(), Content: content, Author: author, CreatedAt: s.now()}
	comments := append(append([]domain.Comment{}, task.Comments...), c)

	b := domain.NewBatch()
	b.Update(domain.CollectionTasks, taskID, map[string]any{domain.FieldComments: comments})
	if err := commit(ctx, s.sink, s.state, "add_comment", b); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

// AddAttachment records an uploaded file reference on the task.
func (s *BoardService) AddAttachment(ctx context.Context, taskID, name, url string) (domain.Attachment, error) {
	task, ok := s.task(taskID)
	if !ok {
		return domain.Attachment{}, ErrTaskNotFound
	}
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if name == "" || url == "" {
		return domain.Attachment{}, fmt.Errorf("%w: attachment name and url are required", ErrValidation)
	}

	a := domain.Attachment{ID: s.newID(), Name: name, URL: url, UploadedAt: s.now()}
	attachments := append(append([]domain.Attachment{}, task.Attachments...), a)

	b := domain.NewBatch()
	b.Update(domain.CollectionTasks, taskID, map[string]any{domain.FieldAttachments: attachments})
	if err := commit(ctx, s.sink, s.state, "add_attachment", b); err != nil {
		return domain.Attachment{}, err
	}
	return a, nil
}

// AddAssignee adds name to the task's assignee set. Adding an existing name writes nothing.
func (s *BoardService) AddAssignee(ctx context.Context, taskID, name string) error {
	task, ok := s.task(taskID)
	if !ok {
		return ErrTaskNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: assignee name is empty", ErrValidation)
	}
	for _, a := range task.Assignees {
		if a == name {
			return nil
		}
	}

	b := domain.NewBatch()
	b.Update(domain.CollectionTasks, taskID, map[string]any{
		domain.FieldAssignees: domain.NormalizeNames(append(append([]string{}, task.Assignees...), name)),
	})
	return commit(ctx, s.sink, s.state, "add_assignee", b)
}

func (s *BoardService) RemoveAssignee(ctx context.Context, taskID, name string) error {
	task, ok := s.task(taskID)
	if !ok {
		return ErrTaskNotFound
	}
	kept := make([]string, 0, len(task.Assignees))
	for _, a := range task.Assignees {
		if a != name {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(task.Assignees) {
		return nil
	}

	b := domain.NewBatch()
	b.Update(domain.CollectionTasks, taskID, map[string]any{domain.FieldAssignees: kept})
	return commit(ctx, s.sink, s.state, "remove_assignee", b)
}

func (s *BoardService) task(id string) (domain.Task, bool) {
	for _, t := range s.state.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len([]rune(title)) > maxTitleLen {
		return "", fmt.Errorf("%w: title is longer than %d characters", ErrValidation, maxTitleLen)
	}
	return title, nil
}

// empty clears the due date
func validateDueDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: due date %q is not YYYY-MM-DD", ErrValidation, s)
	}
	return d.Format(domain.DateLayout), nil
}
