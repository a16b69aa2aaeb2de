package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"kanban_board/internal/domain"
)

func newTestService(t *testing.T, titles ...string) (*BoardService, *storeState) {
	t.Helper()
	store, state := newBoard(t, titles...)
	svc := NewBoardService(store, state)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, state
}

func TestCreateColumnAppendsAtEnd(t *testing.T) {
	svc, state := newTestService(t, "Backlog", "Doing")

	col, err := svc.CreateColumn(context.Background(), ColumnForm{Title: "  Done "})
	if err != nil {
		t.Fatalf("create column: %v", err)
	}
	if col.Title != "Done" || col.Order != 2 {
		t.Fatalf("unexpected column %+v", col)
	}
	cols := state.Columns()
	if len(cols) != 3 || cols[2].ID != col.ID {
		t.Fatalf("column not appended: %v", columnIDs(cols))
	}
	assertDense(t, cols)
}

func TestCreateColumnValidation(t *testing.T) {
	svc, state := newTestService(t)

	for _, title := range []string{"", "   ", strings.Repeat("x", maxTitleLen+1)} {
		if _, err := svc.CreateColumn(context.Background(), ColumnForm{Title: title}); !errors.Is(err, ErrValidation) {
			t.Fatalf("title %q: expected ErrValidation, got %v", title, err)
		}
	}
	if len(state.Columns()) != 0 {
		t.Fatalf("invalid column was stored")
	}
}

func TestRenameColumn(t *testing.T) {
	svc, state := newTestService(t, "Backlog")
	ctx := context.Background()

	if err := svc.RenameColumn(ctx, "Backlog", ColumnForm{Title: "Ideas"}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got := state.Columns()[0].Title; got != "Ideas" {
		t.Fatalf("title %q", got)
	}
	if err := svc.RenameColumn(ctx, "missing", ColumnForm{Title: "x"}); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestDeleteColumnCascadesAndRenumbers(t *testing.T) {
	store, state := newBoard(t, "Backlog", "Doing", "Done")
	addTask(t, store, "t1", "Doing", domain.StatusInProgress)
	addTask(t, store, "t2", "Doing", domain.StatusInProgress)
	addTask(t, store, "t3", "Done", domain.StatusDone)
	svc := NewBoardService(store, state)
	before := store.Commits()

	if err := svc.DeleteColumn(context.Background(), "Doing"); err != nil {
		t.Fatalf("delete column: %v", err)
	}
	if store.Commits() != before+1 {
		t.Fatalf("cascade took %d commits", store.Commits()-before)
	}

	cols := state.Columns()
	if got := columnIDs(cols); !reflect.DeepEqual(got, []string{"Backlog", "Done"}) {
		t.Fatalf("columns %v", got)
	}
	assertDense(t, cols)

	tasks := state.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "t3" {
		t.Fatalf("tasks after cascade: %+v", tasks)
	}

	if err := svc.DeleteColumn(context.Background(), "Doing"); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestDeleteColumnFailureKeepsEverything(t *testing.T) {
	store, state := newBoard(t, "Backlog", "Doing")
	addTask(t, store, "t1", "Backlog", domain.StatusToDo)
	svc := NewBoardService(store, state)
	before := state.Tasks()

	store.FailAfter(1, errors.New("disk full"))
	if err := svc.DeleteColumn(context.Background(), "Backlog"); !errors.Is(err, ErrCommitFailed) {
		t.Fatalf("expected ErrCommitFailed, got %v", err)
	}
	if len(state.Columns()) != 2 || !reflect.DeepEqual(before, state.Tasks()) {
		t.Fatalf("partial cascade visible")
	}
	if state.resyncs != 1 {
		t.Fatalf("expected resync after failure")
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	svc, state := newTestService(t, "Backlog")

	task, err := svc.CreateTask(context.Background(), "Backlog", TaskForm{
		Title:   "Write docs",
		DueDate: "2024-06-30",
		Labels:  []string{"docs", " docs ", ""},
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != domain.StatusToDo || task.Priority != domain.PriorityMedium {
		t.Fatalf("unexpected defaults %+v", task)
	}
	if !reflect.DeepEqual(task.Labels, []string{"docs"}) {
		t.Fatalf("labels %v", task.Labels)
	}
	tasks := state.Tasks()
	if len(tasks) != 1 || tasks[0].ColumnID != "Backlog" || tasks[0].DueDate != "2024-06-30" {
		t.Fatalf("stored %+v", tasks)
	}
}

func TestCreateTaskRejects(t *testing.T) {
	svc, _ := newTestService(t, "Backlog")
	ctx := context.Background()

	tests := []struct {
		name   string
		column string
		form   TaskForm
		want   error
	}{
		{"unknown column", "nope", TaskForm{Title: "x"}, ErrColumnNotFound},
		{"blank title", "Backlog", TaskForm{Title: " "}, ErrValidation},
		{"bad priority", "Backlog", TaskForm{Title: "x", Priority: "Someday"}, ErrValidation},
		{"bad due date", "Backlog", TaskForm{Title: "x", DueDate: "30/06/2024"}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTask(ctx, tt.column, tt.form); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUpdateTaskWritesOnlyPresentFields(t *testing.T) {
	store, state := newBoard(t, "Backlog")
	addTask(t, store, "t1", "Backlog", domain.StatusToDo)
	svc := NewBoardService(store, state)
	ctx := context.Background()

	before := store.Commits()
	if err := svc.UpdateTask(ctx, "t1", TaskPatch{}); err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if store.Commits() != before {
		t.Fatalf("empty patch committed")
	}

	high := domain.PriorityHigh
	done := domain.StatusDone
	names := []string{"ann", "bob", "ann"}
	if err := svc.UpdateTask(ctx, "t1", TaskPatch{Priority: &high, Status: &done, Assignees: &names}); err != nil {
		t.Fatalf("update: %v", err)
	}
	task := state.Tasks()[0]
	if task.Title != "t1" || task.Priority != high || task.Status != done {
		t.Fatalf("unexpected task %+v", task)
	}
	if !reflect.DeepEqual(task.Assignees, []string{"ann", "bob"}) {
		t.Fatalf("assignees %v", task.Assignees)
	}

	bogus := domain.Status("Blocked")
	if err := svc.UpdateTask(ctx, "t1", TaskPatch{Status: &bogus}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := svc.UpdateTask(ctx, "missing", TaskPatch{Status: &done}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	store, state := newBoard(t, "Backlog")
	addTask(t, store, "t1", "Backlog", domain.StatusToDo)
	addTask(t, store, "t2", "Backlog", domain.StatusToDo)
	svc := NewBoardService(store, state)

	if err := svc.DeleteTask(context.Background(), "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tasks := state.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "t2" {
		t.Fatalf("tasks %+v", tasks)
	}
	if err := svc.DeleteTask(context.Background(), "t1"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestCommentsAndAttachmentsAppend(t *testing.T) {
	svc, state := newTestService(t, "Backlog")
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "Backlog", TaskForm{Title: "write docs"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AddComment(ctx, task.ID, "ann", "first"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	c2, err := svc.AddComment(ctx, task.ID, "", "second")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if c2.Author != "anonymous" {
		t.Fatalf("author %q", c2.Author)
	}
	if _, err := svc.AddComment(ctx, task.ID, "ann", "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank comment, got %v", err)
	}

	if _, err := svc.AddAttachment(ctx, task.ID, "plan.pdf", "https://files.example/plan.pdf"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := svc.AddAttachment(ctx, task.ID, "plan.pdf", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing url, got %v", err)
	}

	got := state.Tasks()[0]
	if len(got.Comments) != 2 || got.Comments[0].Content != "first" || got.Comments[1].Content != "second" {
		t.Fatalf("comments %+v", got.Comments)
	}
	if !got.Comments[0].CreatedAt.Before(got.Comments[1].CreatedAt) {
		t.Fatalf("comment timestamps not increasing")
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "plan.pdf" {
		t.Fatalf("attachments %+v", got.Attachments)
	}

	if _, err := svc.AddComment(ctx, "missing", "ann", "hi"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestAssigneesAreASet(t *testing.T) {
	store, state := newBoard(t, "Backlog")
	addTask(t, store, "t1", "Backlog", domain.StatusToDo)
	svc := NewBoardService(store, state)
	ctx := context.Background()

	for _, name := range []string{"ann", "bob", "ann"} {
		if err := svc.AddAssignee(ctx, "t1", name); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if err := svc.AddAssignee(ctx, "t1", " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := state.Tasks()[0].Assignees; !reflect.DeepEqual(got, []string{"ann", "bob"}) {
		t.Fatalf("assignees %v", got)
	}

	if err := svc.RemoveAssignee(ctx, "t1", "ann"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	before := store.Commits()
	if err := svc.RemoveAssignee(ctx, "t1", "zed"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if store.Commits() != before {
		t.Fatalf("removing an absent assignee committed")
	}
	if got := state.Tasks()[0].Assignees; !reflect.DeepEqual(got, []string{"bob"}) {
		t.Fatalf("assignees %v", got)
	}
}
