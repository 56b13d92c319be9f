package anim

// Action identifies a logical animation action for a creature.
// The set of actions available to a creature is fixed when its
// state machine is constructed.
type Action string

const (
	ActionIdle  Action = "idle"
	ActionSwim  Action = "swim"
	ActionDash  Action = "dash"
	ActionBite  Action = "bite"
	ActionHurt  Action = "hurt"
	ActionDeath Action = "death"
)

// oneShotActions are actions that play once and then return control
// to a looping action. They cannot be preempted by routine
// speed-driven transitions.
var oneShotActions = map[Action]bool{
	ActionBite:  true,
	ActionHurt:  true,
	ActionDeath: true,
	ActionDash:  true,
}

// swimTypeActions are movement loops, used when picking a default
// action for a creature that has neither idle nor a declared first
// action.
var swimTypeActions = []Action{ActionSwim, ActionDash}

// IsOneShot reports whether the action plays once and completes
// rather than looping.
func (a Action) IsOneShot() bool {
	return oneShotActions[a]
}

// Speed band thresholds. Speed is normalized to [0, 1] by the game's
// movement logic before it reaches the state machine.
const (
	// IdleSpeedThreshold is the speed below which a creature is
	// considered to be holding still.
	IdleSpeedThreshold = 0.1

	// FastSpeedThreshold is the speed above which a creature is
	// considered to be dashing.
	FastSpeedThreshold = 0.6
)

// ActionForSpeed maps a normalized speed into the three-band action
// scheme: idle below IdleSpeedThreshold, swim below
// FastSpeedThreshold, dash above it.
func ActionForSpeed(speed float64) Action {
	switch {
	case speed < IdleSpeedThreshold:
		return ActionIdle
	case speed < FastSpeedThreshold:
		return ActionSwim
	default:
		return ActionDash
	}
}
