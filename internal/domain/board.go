package domain

// Board is a full view of both collections.
type Board struct {
	Columns []Column `json:"columns"`
	Tasks   []Task   `json:"tasks"`
}

// Column looks a column up by id.
func (b Board) Column(id string) (Column, bool) {
	for _, c := range b.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// Task looks a task up by id.
func (b Board) Task(id string) (Task, bool) {
	for _, t := range b.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// TasksIn returns the tasks whose ColumnID equals columnID, in board order.
func (b Board) TasksIn(columnID string) []Task {
	var res []Task
	for _, t := range b.Tasks {
		if t.ColumnID == columnID {
			res = append(res, t)
		}
	}
	return res
}
