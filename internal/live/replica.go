package live

import (
	"context"
	"sort"
	"sync"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

// Replica is the process-local cached copy of the board. It is rebuilt from
// every snapshot and can be tentatively updated ahead of a commit; the next
// snapshot overwrites tentative changes whether the commit succeeded or not.
type Replica struct {
	view    *View
	columns *Subscription
	tasks   *Subscription

	mu        sync.RWMutex
	board     domain.Board
	haveCols  bool
	haveTasks bool
	ready     chan struct{}
	readyOnce sync.Once
	listeners []func(domain.Board)
}

func NewReplica(view *View) (*Replica, error) {
	cols, err := view.Subscribe(domain.CollectionColumns, "order")
	if err != nil {
		return nil, err
	}
	tasks, err := view.Subscribe(domain.CollectionTasks, "createdAt")
	if err != nil {
		cols.Close()
		return nil, err
	}
	return &Replica{
		view:    view,
		columns: cols,
		tasks:   tasks,
		ready:   make(chan struct{}),
	}, nil
}

// OnChange registers fn to be called with the board after every authoritative snapshot.
func (r *Replica) OnChange(fn func(domain.Board)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Run consumes snapshots until ctx is done, then unsubscribes. Every wake-up
// installs the newest published state of both collections, so listeners see
// the columns and tasks of one reload pass together.
func (r *Replica) Run(ctx context.Context) {
	defer r.columns.Close()
	defer r.tasks.Close()

	installed := map[string]uint64{}
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.columns.Updates():
		case <-r.tasks.Updates():
		}
		drain(r.columns)
		drain(r.tasks)

		var fresh []Snapshot
		for _, snap := range r.view.Latest(domain.CollectionColumns, domain.CollectionTasks) {
			if snap.Version > installed[snap.Collection] {
				installed[snap.Collection] = snap.Version
				fresh = append(fresh, snap)
			}
		}
		if len(fresh) > 0 {
			r.Apply(fresh...)
		}
	}
}

func drain(sub *Subscription) {
	select {
	case <-sub.Updates():
	default:
	}
}

// Apply installs authoritative snapshots and notifies listeners once.
func (r *Replica) Apply(snaps ...Snapshot) {
	r.mu.Lock()
	for _, snap := range snaps {
		switch snap.Collection {
		case domain.CollectionColumns:
			r.board.Columns = append([]domain.Column(nil), snap.Columns...)
			r.haveCols = true
		case domain.CollectionTasks:
			r.board.Tasks = make([]domain.Task, len(snap.Tasks))
			for i, t := range snap.Tasks {
				r.board.Tasks[i] = t.Clone()
			}
			r.haveTasks = true
		}
	}
	ready := r.haveCols && r.haveTasks
	board := r.copyLocked()
	listeners := append(([]func(domain.Board))(nil), r.listeners...)
	r.mu.Unlock()

	if !ready {
		return
	}
	for _, fn := range listeners {
		fn(board)
	}
	r.readyOnce.Do(func() { close(r.ready) })
}

// WaitReady blocks until both collections have been received once.
func (r *Replica) WaitReady(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Replica) Columns() []domain.Column {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Column(nil), r.board.Columns...)
}

func (r *Replica) Tasks() []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]domain.Task, len(r.board.Tasks))
	for i, t := range r.board.Tasks {
		res[i] = t.Clone()
	}
	return res
}

func (r *Replica) Board() domain.Board {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyLocked()
}

func (r *Replica) copyLocked() domain.Board {
	b := domain.Board{
		Columns: append([]domain.Column(nil), r.board.Columns...),
		Tasks:   make([]domain.Task, len(r.board.Tasks)),
	}
	for i, t := range r.board.Tasks {
		b.Tasks[i] = t.Clone()
	}
	return b
}

// ApplyTentative applies b locally before it is committed. Mutations that do
// not fit the local state are skipped.
func (r *Replica) ApplyTentative(b *domain.Batch) {
	log := logger.Component("replica")

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range b.Ops() {
		switch m.Collection {
		case domain.CollectionColumns:
			r.board.Columns = applyColumn(r.board.Columns, m, log.Debug)
		case domain.CollectionTasks:
			r.board.Tasks = applyTask(r.board.Tasks, m, log.Debug)
		}
	}
	sort.SliceStable(r.board.Columns, func(i, j int) bool {
		return r.board.Columns[i].Order < r.board.Columns[j].Order
	})
}

// Resync asks the view for fresh snapshots of both collections.
func (r *Replica) Resync() {
	r.view.Notify(context.Background(), domain.CollectionColumns, domain.CollectionTasks)
}

func applyColumn(cols []domain.Column, m domain.Mutation, debug func(string, ...any)) []domain.Column {
	switch m.Op {
	case domain.OpCreate:
		return append(cols, *m.Column)
	case domain.OpUpdate:
		for i := range cols {
			if cols[i].ID == m.ID {
				if err := cols[i].Apply(m.Fields); err != nil {
					debug("tentative column update skipped", "id", m.ID, "error", err)
				}
			}
		}
	case domain.OpDelete:
		res := cols[:0]
		for _, c := range cols {
			if c.ID != m.ID {
				res = append(res, c)
			}
		}
		return res
	}
	return cols
}

func applyTask(tasks []domain.Task, m domain.Mutation, debug func(string, ...any)) []domain.Task {
	switch m.Op {
	case domain.OpCreate:
		return append(tasks, m.Task.Clone())
	case domain.OpUpdate:
		for i := range tasks {
			if tasks[i].ID == m.ID {
				if err := tasks[i].Apply(m.Fields); err != nil {
					debug("tentative task update skipped", "id", m.ID, "error", err)
				}
			}
		}
	case domain.OpDelete:
		res := tasks[:0]
		for _, t := range tasks {
			if t.ID != m.ID {
				res = append(res, t)
			}
		}
		return res
	}
	return tasks
}
