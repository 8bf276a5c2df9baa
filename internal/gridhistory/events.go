package gridhistory

// EventType identifies a history transition reported to a view's observer.
type EventType string

const (
	EventRecorded    EventType = "recorded"     // a write was logged into the open head diff
	EventFinalized   EventType = "finalized"    // the head diff was sealed
	EventPruned      EventType = "pruned"       // an open diff with no net effect was discarded
	EventReverted    EventType = "reverted"     // the cursor moved back one diff
	EventApplied     EventType = "applied"      // the cursor moved forward one diff
	EventCleared     EventType = "cleared"      // all history was discarded
	EventReseeded    EventType = "reseeded"     // SetHistory installed a new history
	EventBaselineSet EventType = "baseline_set" // SetBaseline replaced the grid's contents
)

// Event describes a completed history transition.
type Event struct {
	Type EventType
	// Index is the cursor after the transition.
	Index int
	// Diffs is the number of diffs after the transition.
	Diffs int
	// Changes is the number of changes in the diff involved, when there is one.
	Changes int
}

// Observer receives events synchronously after each transition.
type Observer func(Event)
