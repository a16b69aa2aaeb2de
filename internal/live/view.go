// Package live keeps subscribers up to date with full snapshots of the
// columns and tasks collections.
package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrOrderingKey       = errors.New("unsupported ordering key")
)

// Source loads the authoritative state of a collection.
type Source interface {
	ListColumns(ctx context.Context) ([]domain.Column, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
}

// Snapshot is the full content of one collection at Version.
type Snapshot struct {
	Collection string
	Version    uint64
	Columns    []domain.Column
	Tasks      []domain.Task
	LoadedAt   time.Time
}

// View fans store changes out to subscribers. Call Notify when a collection
// changed; Run reloads it and pushes the new snapshot.
type View struct {
	src Source

	// serializes load+publish so an older load never overwrites a newer one
	loadMu sync.Mutex

	mu      sync.Mutex
	subs    map[string]map[*Subscription]struct{}
	latest  map[string]Snapshot
	dirty   map[string]bool
	version uint64

	wake chan struct{}
}

func NewView(src Source) *View {
	return &View{
		src:    src,
		subs:   make(map[string]map[*Subscription]struct{}),
		latest: make(map[string]Snapshot),
		dirty:  make(map[string]bool),
		wake:   make(chan struct{}, 1),
	}
}

// Subscribe returns a subscription delivering full snapshots of collection.
// Columns must be ordered by "order"; tasks accept "" or "createdAt".
// The current snapshot, if already loaded, is delivered first.
func (v *View) Subscribe(collection, orderingKey string) (*Subscription, error) {
	switch collection {
	case domain.CollectionColumns:
		if orderingKey != "order" {
			return nil, fmt.Errorf("%w: %q for %s", ErrOrderingKey, orderingKey, collection)
		}
	case domain.CollectionTasks:
		if orderingKey != "" && orderingKey != "createdAt" {
			return nil, fmt.Errorf("%w: %q for %s", ErrOrderingKey, orderingKey, collection)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	sub := &Subscription{
		view:       v,
		collection: collection,
		ch:         make(chan Snapshot, 1),
	}

	v.mu.Lock()
	if v.subs[collection] == nil {
		v.subs[collection] = make(map[*Subscription]struct{})
	}
	v.subs[collection][sub] = struct{}{}
	snap, loaded := v.latest[collection]
	if loaded {
		sub.offer(snap)
	} else {
		v.dirty[collection] = true
	}
	v.mu.Unlock()

	if !loaded {
		v.signal()
	}
	return sub, nil
}

// Notify marks collections as changed. It never blocks.
func (v *View) Notify(_ context.Context, collections ...string) {
	v.mu.Lock()
	for _, c := range collections {
		v.dirty[c] = true
	}
	v.mu.Unlock()
	v.signal()
}

func (v *View) signal() {
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

// Refresh synchronously reloads collections and publishes them together, so a
// subscriber reading Latest never sees one collection of the pass without the other.
func (v *View) Refresh(ctx context.Context, collections ...string) error {
	v.loadMu.Lock()
	defer v.loadMu.Unlock()

	snaps := make([]Snapshot, 0, len(collections))
	for _, c := range collections {
		snap := Snapshot{Collection: c, LoadedAt: time.Now()}
		var err error
		switch c {
		case domain.CollectionColumns:
			snap.Columns, err = v.src.ListColumns(ctx)
		case domain.CollectionTasks:
			snap.Tasks, err = v.src.ListTasks(ctx)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownCollection, c)
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", c, err)
		}
		snaps = append(snaps, snap)
	}
	v.publish(snaps...)
	return nil
}

func (v *View) publish(snaps ...Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, snap := range snaps {
		v.version++
		snap.Version = v.version
		v.latest[snap.Collection] = snap
		for sub := range v.subs[snap.Collection] {
			sub.offer(snap)
		}
	}
}

// Latest returns the newest published snapshot of each loaded collection.
func (v *View) Latest(collections ...string) []Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	res := make([]Snapshot, 0, len(collections))
	for _, c := range collections {
		if snap, ok := v.latest[c]; ok {
			res = append(res, snap)
		}
	}
	return res
}

// Run processes change notices until ctx is done. A failed reload leaves the
// collection dirty and is retried after retryDelay.
func (v *View) Run(ctx context.Context) {
	const retryDelay = time.Second
	log := logger.Component("live")

	for {
		select {
		case <-ctx.Done():
			return
		case <-v.wake:
		}

		v.mu.Lock()
		var pending []string
		for _, c := range []string{domain.CollectionColumns, domain.CollectionTasks} {
			if v.dirty[c] {
				pending = append(pending, c)
				delete(v.dirty, c)
			}
		}
		v.mu.Unlock()

		if len(pending) == 0 {
			continue
		}
		if err := v.Refresh(ctx, pending...); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("snapshot reload failed", "collections", pending, "error", err)
			v.mu.Lock()
			for _, c := range pending {
				v.dirty[c] = true
			}
			v.mu.Unlock()
			time.AfterFunc(retryDelay, v.signal)
		}
	}
}

func (v *View) unsubscribe(sub *Subscription) {
	v.mu.Lock()
	delete(v.subs[sub.collection], sub)
	v.mu.Unlock()
}

// Subscription delivers snapshots of one collection. Only the newest
// undelivered snapshot is kept.
type Subscription struct {
	view       *View
	collection string
	ch         chan Snapshot
	once       sync.Once
}

func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

func (s *Subscription) Collection() string {
	return s.collection
}

// Close unsubscribes. Updates is not closed so pending readers do not see a zero snapshot.
func (s *Subscription) Close() {
	s.once.Do(func() { s.view.unsubscribe(s) })
}

// offer replaces any undelivered snapshot with snap. Caller holds view.mu.
func (s *Subscription) offer(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
