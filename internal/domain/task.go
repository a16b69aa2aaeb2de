package domain

import (
	"slices"
	"strings"
	"time"
)

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status of a task
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus matches a label such as a column title against the known statuses.
// Matching ignores case and surrounding whitespace.
func ParseStatus(label string) (Status, bool) {
	label = strings.TrimSpace(label)
	for _, s := range []Status{StatusToDo, StatusInProgress, StatusDone} {
		if strings.EqualFold(label, string(s)) {
			return s, true
		}
	}
	return "", false
}

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

type Task struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Priority    Priority     `db:"priority" json:"priority"`
	DueDate     string       `db:"due_date" json:"dueDate,omitempty"`
	Status      Status       `db:"status" json:"status"`
	ColumnID    string       `db:"column_id" json:"columnId"`
	Assignees   []string     `db:"assignees" json:"assignees"`
	Comments    []Comment    `db:"comments" json:"comments"`
	Attachments []Attachment `db:"attachments" json:"attachments"`
	Labels      []string     `db:"labels" json:"labels"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// NormalizeNames trims names, drops blanks and duplicates, keeping first occurrence.
// Used for assignees and labels which are sets.
func NormalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Clone returns a deep copy so callers can mutate slices freely.
func (t Task) Clone() Task {
	c := t
	c.Assignees = slices.Clone(t.Assignees)
	c.Comments = slices.Clone(t.Comments)
	c.Attachments = slices.Clone(t.Attachments)
	c.Labels = slices.Clone(t.Labels)
	return c
}
