package domain

import "sort"

// Op is the kind of a staged write.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Field names accepted by update mutations. Values carry the Go type of the
// matching struct field (int for order, Status for status, []Comment for comments...).
const (
	FieldTitle       = "title"
	FieldOrder       = "order"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldDueDate     = "dueDate"
	FieldStatus      = "status"
	FieldColumnID    = "columnId"
	FieldAssignees   = "assignees"
	FieldComments    = "comments"
	FieldAttachments = "attachments"
	FieldLabels      = "labels"
)

// Mutation is one document write keyed by (Collection, ID).
type Mutation struct {
	Op         Op             `json:"op"`
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Column     *Column        `json:"column,omitempty"`
	Task       *Task          `json:"task,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// Batch stages mutations that must be applied all-or-nothing.
type Batch struct {
	ops []Mutation
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) CreateColumn(c Column) {
	b.ops = append(b.ops, Mutation{Op: OpCreate, Collection: CollectionColumns, ID: c.ID, Column: &c})
}

func (b *Batch) CreateTask(t Task) {
	t = t.Clone()
	b.ops = append(b.ops, Mutation{Op: OpCreate, Collection: CollectionTasks, ID: t.ID, Task: &t})
}

func (b *Batch) Update(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, Mutation{Op: OpUpdate, Collection: collection, ID: id, Fields: fields})
}

func (b *Batch) Delete(collection, id string) {
	b.ops = append(b.ops, Mutation{Op: OpDelete, Collection: collection, ID: id})
}

func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ops)
}

func (b *Batch) Empty() bool {
	return b.Len() == 0
}

// Ops returns the staged mutations in staging order.
func (b *Batch) Ops() []Mutation {
	if b == nil {
		return nil
	}
	return append([]Mutation(nil), b.ops...)
}

// Collections lists the distinct collections touched by the batch, sorted.
func (b *Batch) Collections() []string {
	seen := map[string]struct{}{}
	var res []string
	for _, m := range b.Ops() {
		if _, ok := seen[m.Collection]; ok {
			continue
		}
		seen[m.Collection] = struct{}{}
		res = append(res, m.Collection)
	}
	sort.Strings(res)
	return res
}
