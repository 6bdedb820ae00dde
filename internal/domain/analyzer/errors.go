package analyzer

import "fmt"

// DataShapeError reports an event whose parsed player and score lists
// disagree in length. The event is unanalyzable; none of its records are
// persisted or emitted.
type DataShapeError struct {
	EventID   int
	EventName string
	Players   int
	Scores    int
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("event %d (%s): %d players but %d scores",
		e.EventID, e.EventName, e.Players, e.Scores)
}
