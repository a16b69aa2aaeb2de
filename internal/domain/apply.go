package domain

import (
	"fmt"
	"slices"
)

// Apply sets the given fields on the column. On error the column is unchanged.
func (c *Column) Apply(fields map[string]any) error {
	next := *c
	for name, v := range fields {
		switch name {
		case FieldTitle:
			s, ok := v.(string)
			if !ok {
				return fieldTypeErr(name, v)
			}
			next.Title = s
		case FieldOrder:
			n, ok := v.(int)
			if !ok {
				return fieldTypeErr(name, v)
			}
			next.Order = n
		default:
			return fmt.Errorf("%w: columns.%s", ErrUnknownField, name)
		}
	}
	*c = next
	return nil
}

// Apply sets the given fields on the task. Slices are copied; on error the task is unchanged.
func (t *Task) Apply(fields map[string]any) error {
	next := t.Clone()
	for name, v := range fields {
		var ok bool
		switch name {
		case FieldTitle:
			next.Title, ok = v.(string)
		case FieldDescription:
			next.Description, ok = v.(string)
		case FieldPriority:
			next.Priority, ok = v.(Priority)
		case FieldDueDate:
			next.DueDate, ok = v.(string)
		case FieldStatus:
			next.Status, ok = v.(Status)
		case FieldColumnID:
			next.ColumnID, ok = v.(string)
		case FieldAssignees:
			var s []string
			s, ok = v.([]string)
			next.Assignees = slices.Clone(s)
		case FieldLabels:
			var s []string
			s, ok = v.([]string)
			next.Labels = slices.Clone(s)
		case FieldComments:
			var s []Comment
			s, ok = v.([]Comment)
			next.Comments = slices.Clone(s)
		case FieldAttachments:
			var s []Attachment
			s, ok = v.([]Attachment)
			next.Attachments = slices.Clone(s)
		default:
			return fmt.Errorf("%w: tasks.%s", ErrUnknownField, name)
		}
		if !ok {
			return fieldTypeErr(name, v)
		}
	}
	*t = next
	return nil
}

func fieldTypeErr(name string, v any) error {
	return fmt.Errorf("%w: %s has type %T", ErrFieldType, name, v)
}
