package table

// Action is a destructive table operation that needs confirmation.
type Action int

const (
	ActionRemoveRow Action = iota + 1
	ActionRemoveColumn
	ActionClear
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionRemoveRow:
		return "remove_row"
	case ActionRemoveColumn:
		return "remove_column"
	case ActionClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Message returns the question shown to the operator.
func (a Action) Message() string {
	switch a {
	case ActionRemoveRow:
		return "Are you sure you want to delete the table row?"
	case ActionRemoveColumn:
		return "Are you sure you want to delete the table column?"
	case ActionClear:
		return "Are you sure you want to clear the table?"
	default:
		return ""
	}
}

// State is the confirmation state of one table editor: Idle or Pending.
type State interface {
	isState()
}

// Idle means nothing awaits confirmation.
type Idle struct{}

// Pending is a destructive request awaiting confirmation.
type Pending struct {
	ID      uint64 // distinguishes a request from the ones that replace it
	Action  Action
	Index   int // row or column index; unused for ActionClear
	Message string
}

func (Idle) isState()    {}
func (Pending) isState() {}

// Request returns the pending state for an action. It replaces whatever
// state came before it.
func Request(action Action, index int) Pending {
	return Pending{Action: action, Index: index, Message: action.Message()}
}

// Resolve takes the pending request out of s. Confirming and cancelling both
// return to Idle; Idle cannot be resolved.
func Resolve(s State) (Pending, Idle, error) {
	p, ok := s.(Pending)
	if !ok {
		return Pending{}, Idle{}, ErrNoPending
	}
	return p, Idle{}, nil
}

// ResolveID is Resolve for one particular request. Once a newer request has
// replaced it, the request can no longer be confirmed or cancelled.
func ResolveID(s State, id uint64) (Pending, Idle, error) {
	p, ok := s.(Pending)
	if !ok || p.ID != id {
		return Pending{}, Idle{}, ErrNoPending
	}
	return p, Idle{}, nil
}
