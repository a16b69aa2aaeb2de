package service

import (
	"context"
	"fmt"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

// StatusPolicy decides what a cross-column task move does to the task status.
type StatusPolicy int

const (
	// StatusDecoupled leaves status alone; it changes only through task edits.
	StatusDecoupled StatusPolicy = iota
	// StatusFollowsColumn sets status to the destination column title when
	// that title is a known status label.
	StatusFollowsColumn
)

// Reasons a drop produced no writes.
const (
	ReasonNoDestination = "no_destination"
	ReasonInPlace       = "in_place"
	ReasonStale         = "stale_reference"
	ReasonSameColumn    = "same_column"
	ReasonUnchanged     = "unchanged"
)

type DropResult struct {
	Applied bool   `json:"applied"`
	Writes  int    `json:"writes"`
	Reason  string `json:"reason,omitempty"`
}

// ReorderEngine turns drop events into one atomic batch.
type ReorderEngine struct {
	sink   WriteSink
	state  State
	policy StatusPolicy
}

func NewReorderEngine(sink WriteSink, state State, policy StatusPolicy) *ReorderEngine {
	return &ReorderEngine{sink: sink, state: state, policy: policy}
}

// HandleDrop plans the drop against the current replica and commits the
// result. A drop that needs no writes returns Applied=false and a reason.
func (e *ReorderEngine) HandleDrop(ctx context.Context, ev domain.DropEvent) (DropResult, error) {
	if ev.ItemType != domain.ItemColumn && ev.ItemType != domain.ItemTask {
		return DropResult{}, fmt.Errorf("%w: unknown item type %q", ErrValidation, ev.ItemType)
	}

	b, reason := e.Plan(ev)
	if b.Empty() {
		dropsTotal.WithLabelValues(string(ev.ItemType), reason).Inc()
		logger.Debug("drop ignored", "item_type", ev.ItemType, "item_id", ev.DraggedItemID, "reason", reason)
		return DropResult{Reason: reason}, nil
	}

	if err := commit(ctx, e.sink, e.state, "drop_"+string(ev.ItemType), b); err != nil {
		dropsTotal.WithLabelValues(string(ev.ItemType), "failed").Inc()
		return DropResult{}, err
	}

	dropsTotal.WithLabelValues(string(ev.ItemType), "applied").Inc()
	logger.Info("drop applied", "item_type", ev.ItemType, "item_id", ev.DraggedItemID, "writes", b.Len())
	return DropResult{Applied: true, Writes: b.Len()}, nil
}

// Plan computes the batch for ev without committing it. An empty batch comes
// with the reason nothing has to be written.
func (e *ReorderEngine) Plan(ev domain.DropEvent) (*domain.Batch, string) {
	if !ev.HasDestination() {
		return nil, ReasonNoDestination
	}
	if ev.InPlace() {
		return nil, ReasonInPlace
	}

	switch ev.ItemType {
	case domain.ItemColumn:
		return PlanColumnMove(e.state.Columns(), ev.DraggedItemID, ev.SourceIndex, ev.DestinationIndex)
	case domain.ItemTask:
		return PlanTaskMove(e.state.Columns(), e.state.Tasks(), ev, e.policy)
	}
	return nil, ReasonStale
}

// MoveColumn removes the column at from and reinserts it at to, where to is
// an index into the sequence after removal. to is clamped to the valid range.
func MoveColumn(cols []domain.Column, from, to int) []domain.Column {
	res := make([]domain.Column, 0, len(cols))
	res = append(res, cols[:from]...)
	res = append(res, cols[from+1:]...)

	if to < 0 {
		to = 0
	}
	if to > len(res) {
		to = len(res)
	}

	res = append(res, domain.Column{})
	copy(res[to+1:], res[to:])
	res[to] = cols[from]
	return res
}

// PlanColumnMove stages an order update for every column whose position
// changes. draggedID, when set, must match the column found at from.
func PlanColumnMove(cols []domain.Column, draggedID string, from, to int) (*domain.Batch, string) {
	if from < 0 || from >= len(cols) {
		return nil, ReasonStale
	}
	if draggedID != "" && cols[from].ID != draggedID {
		return nil, ReasonStale
	}

	b := domain.NewBatch()
	for i, c := range MoveColumn(cols, from, to) {
		if c.Order != i {
			b.Update(domain.CollectionColumns, c.ID, map[string]any{domain.FieldOrder: i})
		}
	}
	if b.Empty() {
		return nil, ReasonUnchanged
	}
	return b, ""
}

// PlanTaskMove stages the column change of a dragged task.
func PlanTaskMove(cols []domain.Column, tasks []domain.Task, ev domain.DropEvent, policy StatusPolicy) (*domain.Batch, string) {
	src, ok := findColumn(cols, ev.SourceContainerID)
	if !ok {
		return nil, ReasonStale
	}
	dst, ok := findColumn(cols, *ev.DestinationContainerID)
	if !ok {
		return nil, ReasonStale
	}

	var task *domain.Task
	for i := range tasks {
		if tasks[i].ID == ev.DraggedItemID {
			task = &tasks[i]
			break
		}
	}
	if task == nil || task.ColumnID != src.ID {
		return nil, ReasonStale
	}

	// position within a column is not persisted
	if src.ID == dst.ID {
		return nil, ReasonSameColumn
	}

	fields := map[string]any{domain.FieldColumnID: dst.ID}
	if policy == StatusFollowsColumn {
		if status, ok := domain.ParseStatus(dst.Title); ok {
			fields[domain.FieldStatus] = status
		}
	}

	b := domain.NewBatch()
	b.Update(domain.CollectionTasks, task.ID, fields)
	return b, ""
}

func findColumn(cols []domain.Column, id string) (domain.Column, bool) {
	for _, c := range cols {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Column{}, false
}
