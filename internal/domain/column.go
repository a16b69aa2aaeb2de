package domain

import "time"

// Collection names used by the write sink and the live view.
const (
	CollectionColumns = "columns"
	CollectionTasks   = "tasks"
)

// Column - a lane on the board. Order is the left-to-right position.
type Column struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Order     int       `db:"sort_order" json:"order"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
