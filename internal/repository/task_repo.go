package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kanban_board/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns all tasks in creation order.
func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, priority, due_date, status, column_id,
		       assignees, comments, attachments, labels, created_at
		FROM board_tasks
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		var due *time.Time
		var commentsJSON, attachmentsJSON []byte

		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Priority, &due, &t.Status, &t.ColumnID,
			&t.Assignees, &commentsJSON, &attachmentsJSON, &t.Labels, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		if due != nil {
			t.DueDate = due.Format(domain.DateLayout)
		}
		if err := json.Unmarshal(commentsJSON, &t.Comments); err != nil {
			return nil, fmt.Errorf("task %s comments: %w", t.ID, err)
		}
		if err := json.Unmarshal(attachmentsJSON, &t.Attachments); err != nil {
			return nil, fmt.Errorf("task %s attachments: %w", t.ID, err)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// CreateWithTx inserts a task within a transaction
func (r *TaskRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
	due, err := encodeTaskField(domain.FieldDueDate, t.DueDate)
	if err != nil {
		return err
	}
	comments, err := encodeTaskField(domain.FieldComments, t.Comments)
	if err != nil {
		return err
	}
	attachments, err := encodeTaskField(domain.FieldAttachments, t.Attachments)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO board_tasks (id, title, description, priority, due_date, status, column_id,
		                         assignees, comments, attachments, labels, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, t.ID, t.Title, t.Description, t.Priority, due, t.Status, t.ColumnID,
		nonNil(t.Assignees), comments, attachments, nonNil(t.Labels), t.CreatedAt)
	return err
}

var taskFields = map[string]string{
	domain.FieldTitle:       "title",
	domain.FieldDescription: "description",
	domain.FieldPriority:    "priority",
	domain.FieldDueDate:     "due_date",
	domain.FieldStatus:      "status",
	domain.FieldColumnID:    "column_id",
	domain.FieldAssignees:   "assignees",
	domain.FieldComments:    "comments",
	domain.FieldAttachments: "attachments",
	domain.FieldLabels:      "labels",
}

// UpdateWithTx writes the given fields of one task.
func (r *TaskRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, id string, fields map[string]any) error {
	var probe domain.Task
	if err := probe.Apply(fields); err != nil {
		return err
	}

	set, args, err := setClause(fields, taskFields, encodeTaskField)
	if err != nil {
		return err
	}
	args = append(args, id)

	tag, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE board_tasks SET %s WHERE id = $%d`, set, len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: tasks/%s", domain.ErrDocumentNotFound, id)
	}
	return nil
}

func (r *TaskRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, `DELETE FROM board_tasks WHERE id = $1`, id)
	return err
}

// encodeTaskField converts a validated field value into its SQL argument.
func encodeTaskField(field string, v any) (any, error) {
	switch field {
	case domain.FieldDueDate:
		s, _ := v.(string)
		if s == "" {
			return nil, nil
		}
		d, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("%w: dueDate %q", domain.ErrFieldType, s)
		}
		return d, nil
	case domain.FieldComments:
		c, _ := v.([]domain.Comment)
		if c == nil {
			c = []domain.Comment{}
		}
		return json.Marshal(c)
	case domain.FieldAttachments:
		a, _ := v.([]domain.Attachment)
		if a == nil {
			a = []domain.Attachment{}
		}
		return json.Marshal(a)
	case domain.FieldAssignees, domain.FieldLabels:
		s, _ := v.([]string)
		return nonNil(s), nil
	case domain.FieldPriority:
		return string(v.(domain.Priority)), nil
	case domain.FieldStatus:
		return string(v.(domain.Status)), nil
	}
	return v, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
