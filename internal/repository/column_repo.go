package repository

import (
	"context"
	"fmt"

	"kanban_board/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ColumnRepository struct {
	db *pgxpool.Pool
}

func NewColumnRepository(db *pgxpool.Pool) *ColumnRepository {
	return &ColumnRepository{db: db}
}

// List returns all columns ascending by order.
func (r *ColumnRepository) List(ctx context.Context) ([]domain.Column, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, sort_order, created_at
		FROM board_columns
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Column{}
	for rows.Next() {
		var c domain.Column
		if err := rows.Scan(&c.ID, &c.Title, &c.Order, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// CreateWithTx inserts a column within a transaction
func (r *ColumnRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, c *domain.Column) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO board_columns (id, title, sort_order, created_at)
		VALUES ($1, $2, $3, $4)
	`, c.ID, c.Title, c.Order, c.CreatedAt)
	return err
}

var columnFields = map[string]string{
	domain.FieldTitle: "title",
	domain.FieldOrder: "sort_order",
}

// UpdateWithTx writes the given fields of one column.
func (r *ColumnRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, id string, fields map[string]any) error {
	var probe domain.Column
	if err := probe.Apply(fields); err != nil {
		return err
	}

	set, args, err := setClause(fields, columnFields, nil)
	if err != nil {
		return err
	}
	args = append(args, id)

	tag, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE board_columns SET %s WHERE id = $%d`, set, len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: columns/%s", domain.ErrDocumentNotFound, id)
	}
	return nil
}

func (r *ColumnRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, `DELETE FROM board_columns WHERE id = $1`, id)
	return err
}
