package workflow

// State is a step of the per-person state machine.
type State int

const (
	StateWebsiteLookup State = iota
	StateSocialLookup
	StateDispatch
	StateFinalize
	StateDone
)

func (s State) String() string {
	switch s {
	case StateWebsiteLookup:
		return "website_lookup"
	case StateSocialLookup:
		return "social_lookup"
	case StateDispatch:
		return "dispatch"
	case StateFinalize:
		return "finalize"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Signals are the facts a transition is decided on, sampled after a state runs.
type Signals struct {
	// GoalMet: at least one email and one phone are known.
	GoalMet bool
	// BudgetExhausted: the run's lookup ceiling has been reached.
	BudgetExhausted bool
	// QueueEmpty: no social platforms are left to try.
	QueueEmpty bool
}

// Next returns the state that follows s.
//
// After the website lookup only the goal matters. Inside the social loop the
// checks run in a fixed order: goal met, then budget exhausted, then queue
// empty. An exhausted budget therefore ends the person without a send unless
// the goal was met by the same lookup.
func Next(s State, sig Signals) State {
	switch s {
	case StateWebsiteLookup:
		if sig.GoalMet {
			return StateDispatch
		}
		return StateSocialLookup
	case StateSocialLookup:
		switch {
		case sig.GoalMet:
			return StateDispatch
		case sig.BudgetExhausted:
			return StateFinalize
		case sig.QueueEmpty:
			return StateFinalize
		default:
			return StateSocialLookup
		}
	case StateDispatch:
		return StateFinalize
	default:
		return StateDone
	}
}
