package models

type TransitionDecision int

const (
	// TransitionNoop means the proposed status is already stored.
	TransitionNoop TransitionDecision = iota
	// TransitionLegal means the proposed status may be applied.
	TransitionLegal
	// TransitionIllegal means a backward or sideways move, a stale signal.
	TransitionIllegal
)

func (d TransitionDecision) String() string {
	switch d {
	case TransitionNoop:
		return "noop"
	case TransitionLegal:
		return "legal"
	default:
		return "illegal"
	}
}

// AllowedTransitions lists the forward edges of the status machine.
var AllowedTransitions = map[Status][]Status{
	StatusPending: {
		StatusApproved,
		StatusRefused,
		StatusRefunded,
	},
	StatusApproved: {
		StatusRefunded,
	},
	StatusRefused:  {}, // terminal
	StatusRefunded: {}, // terminal
}

// EvaluateTransition decides what to do with a proposed status change.
func EvaluateTransition(from, to Status) TransitionDecision {
	if from == to {
		return TransitionNoop
	}
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return TransitionLegal
		}
	}
	return TransitionIllegal
}
