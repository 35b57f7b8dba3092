// Package query builds the prompt strings sent to the chat-completion API.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// Action identifies which editor command produced a query.
type Action string

// Supported actions.
const (
	ActionComment  Action = "comment"
	ActionDescribe Action = "describe"
	ActionRewrite  Action = "rewrite"
	ActionAsk      Action = "ask"
)

// ErrNoQuestion is returned when the ask action is used without a question.
var ErrNoQuestion = errors.New("no question entered")

var instructions = map[Action]string{
	ActionComment:  "Add comments to the following code:",
	ActionDescribe: "Describe what the following code does:",
	ActionRewrite:  "Rewrite the following code to be cleaner and more efficient:",
}

// Instruction returns the fixed instruction template for a code action.
func Instruction(action Action) (string, bool) {
	text, ok := instructions[action]
	return text, ok
}

// Title returns the human-readable heading used for documents produced by the action.
func (a Action) Title() string {
	switch a {
	case ActionComment:
		return "Commented code"
	case ActionDescribe:
		return "Code description"
	case ActionRewrite:
		return "Rewritten code"
	case ActionAsk:
		return "Answer"
	default:
		return string(a)
	}
}

// Build concatenates the instruction for action with the selected text.
// For ActionAsk the question takes the place of the fixed instruction.
func Build(action Action, selection, question string) (string, error) {
	var instruction string
	if action == ActionAsk {
		instruction = strings.TrimSpace(question)
		if instruction == "" {
			return "", ErrNoQuestion
		}
	} else {
		text, ok := Instruction(action)
		if !ok {
			return "", fmt.Errorf("unknown action %q", action)
		}
		instruction = text
	}

	return instruction + "\n" + selection, nil
}
