package placement

import "github.com/milk9111/levelforge/grid"

// EventKind identifies an editor input event.
type EventKind int

const (
	EventPointerMove EventKind = iota
	EventConfirm
	EventRelease
	EventCancel
	EventRotate
	EventRemove
)

func (k EventKind) String() string {
	switch k {
	case EventPointerMove:
		return "pointer_move"
	case EventConfirm:
		return "confirm"
	case EventRelease:
		return "release"
	case EventCancel:
		return "cancel"
	case EventRotate:
		return "rotate"
	case EventRemove:
		return "remove"
	}
	return "unknown"
}

// Event is one discrete input sample. Cell is the grid cell under the cursor
// when the event was produced.
type Event struct {
	Kind EventKind
	Cell grid.Cell
}

// EventQueue is a simple FIFO queue the host fills once per frame.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
