// Package anim drives per-creature action transitions through an
// explicit state machine. One Machine instance exists per on-screen
// entity; it consumes speed samples and discrete combat events and
// emits the current logical action, which the sprite layer uses to
// pick a clip or frame set.
package anim

import "time"

// State is a snapshot of a machine's animation state. Previous is
// recorded for diagnostics only; exactly one Current action exists at
// any time.
type State struct {
	Current         Action
	Previous        Action
	Transitioning   bool
	TransitionStart time.Time
	Speed           float64
}

// Machine is the per-entity animation state machine. It is not safe
// for concurrent use; like every component in this module it is
// driven from the single game-loop goroutine.
type Machine struct {
	available map[Action]bool
	order     []Action
	state     State
	now       func() time.Time
}

// NewMachine creates a state machine for one entity with a fixed set
// of available actions. The initial action is "idle" if available,
// otherwise the first listed action, otherwise the first available
// swim-type action.
//
// The available set is immutable after construction; every transition
// is constrained to it.
func NewMachine(actions []Action) *Machine {
	m := &Machine{
		available: make(map[Action]bool, len(actions)),
		order:     make([]Action, 0, len(actions)),
		now:       time.Now,
	}
	for _, a := range actions {
		if !m.available[a] {
			m.available[a] = true
			m.order = append(m.order, a)
		}
	}
	m.state.Current = m.defaultAction()
	return m
}

// defaultAction picks the machine's starting action.
func (m *Machine) defaultAction() Action {
	if m.available[ActionIdle] {
		return ActionIdle
	}
	if len(m.order) > 0 {
		return m.order[0]
	}
	for _, a := range swimTypeActions {
		if m.available[a] {
			return a
		}
	}
	return ActionIdle
}

// State returns a copy of the current animation state.
func (m *Machine) State() State {
	return m.state
}

// Current returns the current logical action.
func (m *Machine) Current() Action {
	return m.state.Current
}

// Has reports whether the machine's entity supports the action.
func (m *Machine) Has(a Action) bool {
	return m.available[a]
}

// ProcessEvent feeds one event into the machine. It returns the new
// action and true if a transition occurred, or the zero Action and
// false if the event produced no transition.
func (m *Machine) ProcessEvent(ev Event) (Action, bool) {
	switch ev.Kind {
	case EventSpeedChange:
		return m.processSpeed(ev.Speed)
	case EventBite:
		return m.processCombat(ActionBite)
	case EventHurt:
		return m.processCombat(ActionHurt)
	case EventDeath:
		return m.processCombat(ActionDeath)
	case EventActionComplete:
		return m.processComplete(ev.Action)
	case EventForce:
		if !m.available[ev.Action] {
			return "", false
		}
		return m.transitionTo(ev.Action)
	}
	return "", false
}

// processSpeed handles a speed sample. The sample is always recorded
// (so a later ActionComplete can return to the right band), but while
// a one-shot action is playing no transition happens.
func (m *Machine) processSpeed(speed float64) (Action, bool) {
	m.state.Speed = speed
	if m.state.Current.IsOneShot() {
		return "", false
	}
	target := m.bandAction(speed)
	if target == "" {
		return "", false
	}
	return m.transitionTo(target)
}

// bandAction maps a speed to the action for its band, falling back to
// swim and then idle when the computed target is not available.
// Returns "" when no movement action is available at all.
func (m *Machine) bandAction(speed float64) Action {
	for _, a := range []Action{ActionForSpeed(speed), ActionSwim, ActionIdle} {
		if m.available[a] {
			return a
		}
	}
	return ""
}

// processCombat transitions immediately to a combat action when the
// entity supports it. The transition is unconditional even while
// another one-shot action is in progress; only speed changes honor
// the one-shot guard.
func (m *Machine) processCombat(a Action) (Action, bool) {
	if !m.available[a] {
		return "", false
	}
	return m.transitionTo(a)
}

// processComplete handles a completion signal for a one-shot action.
// Signals for anything other than the current action are stale (an
// intervening transition already happened) and are discarded.
func (m *Machine) processComplete(a Action) (Action, bool) {
	if a != m.state.Current {
		return "", false
	}
	if !a.IsOneShot() {
		return "", false
	}
	target := m.bandAction(m.state.Speed)
	if target == "" {
		return "", false
	}
	return m.transitionTo(target)
}

// transitionTo records the previous action, marks the machine as
// transitioning, timestamps the change, and returns the new action.
// A transition to the current action is a no-op.
func (m *Machine) transitionTo(a Action) (Action, bool) {
	if a == m.state.Current {
		return "", false
	}
	m.state.Previous = m.state.Current
	m.state.Current = a
	m.state.Transitioning = true
	m.state.TransitionStart = m.now()
	return a, true
}
