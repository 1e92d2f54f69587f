package versejump

import "github.com/llehouerou/tilawa/internal/ui/action"

// Result is emitted when the prompt closes.
type Result struct {
	Number   int
	Canceled bool
}

// ActionType implements action.Action.
func (a Result) ActionType() string { return "versejump.result" }

// ActionMsg wraps a versejump action.
func ActionMsg(a action.Action) action.Msg {
	return action.Msg{Source: "versejump", Action: a}
}
