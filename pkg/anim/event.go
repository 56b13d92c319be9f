package anim

// EventKind discriminates the events a Machine can process.
type EventKind int

const (
	EventSpeedChange EventKind = iota
	EventBite
	EventHurt
	EventDeath
	EventActionComplete
	EventForce
)

// Event is a single input to the state machine. Use the constructor
// functions rather than building Event values by hand.
type Event struct {
	Kind   EventKind
	Speed  float64 // valid for EventSpeedChange
	Action Action  // valid for EventActionComplete and EventForce
}

// SpeedChange reports a new normalized movement speed sample.
func SpeedChange(speed float64) Event {
	return Event{Kind: EventSpeedChange, Speed: speed}
}

// Bite reports a bite attack initiated by combat logic.
func Bite() Event {
	return Event{Kind: EventBite}
}

// Hurt reports damage taken.
func Hurt() Event {
	return Event{Kind: EventHurt}
}

// Death reports the creature dying.
func Death() Event {
	return Event{Kind: EventDeath}
}

// ActionComplete reports that a one-shot action finished playing.
// The action that completed is carried so stale completion signals
// (arriving after an intervening transition) can be discarded.
func ActionComplete(action Action) Event {
	return Event{Kind: EventActionComplete, Action: action}
}

// Force requests an unconditional transition, used for external or
// debug overrides.
func Force(action Action) Event {
	return Event{Kind: EventForce, Action: action}
}
