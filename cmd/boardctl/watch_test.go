package main

import (
	"bytes"
	"strings"
	"testing"

	"kanban_board/internal/domain"
)

func TestPrintBoardGroupsTasksByColumn(t *testing.T) {
	b := domain.Board{
		Columns: []domain.Column{{ID: "d", Title: "Done", Order: 1}, {ID: "b", Title: "Backlog", Order: 0}},
		Tasks: []domain.Task{
			{ID: "t1", Title: "write", ColumnID: "b", Status: domain.StatusToDo, Priority: domain.PriorityLow},
			{ID: "t2", Title: "ship", ColumnID: "d", Status: domain.StatusDone, Priority: domain.PriorityHigh},
		},
	}

	var buf bytes.Buffer
	printBoard(&buf, b)
	out := buf.String()

	backlog := strings.Index(out, "0 Backlog (1)")
	done := strings.Index(out, "1 Done (1)")
	if backlog < 0 || done < 0 || backlog > done {
		t.Fatalf("columns out of order:\n%s", out)
	}
	if !strings.Contains(out, "- ship [Done, High]") {
		t.Fatalf("task line missing:\n%s", out)
	}
}
