package agent

// State is a stage of a controller run.
type State int

const (
	StateAwaitingModel State = iota
	StateParsingOutput
	StateDispatching
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting_model"
	case StateParsingOutput:
		return "parsing_output"
	case StateDispatching:
		return "dispatching"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Observer is notified of every state transition of a run.
type Observer func(from, to State)

// Mode selects how a Controller drives the conversation.
type Mode string

const (
	// ModeReAct loops think, act, observe until a terminal response or the iteration bound.
	ModeReAct Mode = "react"
	// ModeSingleShot makes one tool-calling round and one answering round.
	ModeSingleShot Mode = "single"
)
