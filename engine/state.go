package engine

// State is the editor's interaction state. There is exactly one at a time.
type State int

const (
	Idle       State = iota
	Typing           // inside a typing burst, until the quiet period passes
	Suggesting       // an inline prediction is shown
	Actions          // the spell actions menu is open
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Typing:
		return "typing"
	case Suggesting:
		return "suggesting"
	case Actions:
		return "actions"
	default:
		return "unknown"
	}
}

// Event drives state transitions.
type Event int

const (
	EvEdit Event = iota
	EvTypingIdle
	EvShow
	EvHide
	EvOpenActions
	EvCloseActions
)

func (ev Event) String() string {
	switch ev {
	case EvEdit:
		return "edit"
	case EvTypingIdle:
		return "typing-idle"
	case EvShow:
		return "show"
	case EvHide:
		return "hide"
	case EvOpenActions:
		return "open-actions"
	case EvCloseActions:
		return "close-actions"
	default:
		return "unknown"
	}
}

// transitions lists every legal move. Events missing for a state leave the
// state unchanged.
var transitions = map[State]map[Event]State{
	Idle: {
		EvEdit:        Typing,
		EvShow:        Suggesting,
		EvOpenActions: Actions,
	},
	Typing: {
		EvEdit:        Typing,
		EvTypingIdle:  Idle,
		EvShow:        Suggesting,
		EvOpenActions: Actions,
	},
	Suggesting: {
		EvEdit:        Typing,
		EvHide:        Idle,
		EvOpenActions: Actions,
	},
	Actions: {
		EvEdit:         Typing,
		EvCloseActions: Idle,
	},
}

// Next returns the state reached from s on ev, and whether ev is legal in s.
func Next(s State, ev Event) (State, bool) {
	to, ok := transitions[s][ev]
	if !ok {
		return s, false
	}
	return to, true
}
