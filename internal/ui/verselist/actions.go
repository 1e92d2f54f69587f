package verselist

import "github.com/llehouerou/tilawa/internal/ui/action"

// Jump asks the app to switch playback to a verse.
type Jump struct {
	Number int
}

// ActionType implements action.Action.
func (a Jump) ActionType() string { return "verselist.jump" }

var _ action.Action = Jump{}

// ActionMsg creates an action.Msg for a verse list action.
func ActionMsg(a action.Action) action.Msg {
	return action.Msg{Source: "verselist", Action: a}
}
