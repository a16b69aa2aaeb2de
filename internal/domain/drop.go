package domain

// ItemType of a dragged item
type ItemType string

const (
	ItemColumn ItemType = "column"
	ItemTask   ItemType = "task"
)

// BoardTrackID is the container id of the top-level column track.
const BoardTrackID = "all-columns"

// DropEvent is what the drag-and-drop layer reports when an item is released.
// DestinationContainerID is nil when the item was dropped outside any target.
type DropEvent struct {
	SourceContainerID      string   `json:"sourceContainerId"`
	SourceIndex            int      `json:"sourceIndex"`
	DestinationContainerID *string  `json:"destinationContainerId,omitempty"`
	DestinationIndex       int      `json:"destinationIndex"`
	DraggedItemID          string   `json:"draggedItemId"`
	ItemType               ItemType `json:"itemType"`
}

func (e DropEvent) HasDestination() bool {
	return e.DestinationContainerID != nil
}

// InPlace reports a drop back onto the exact starting slot.
func (e DropEvent) InPlace() bool {
	return e.HasDestination() &&
		*e.DestinationContainerID == e.SourceContainerID &&
		e.DestinationIndex == e.SourceIndex
}
