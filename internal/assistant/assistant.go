// Package assistant implements the editor commands: each one turns a selection into a query,
// sends it, and writes the completion into a freshly opened document.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"codingwithyou/internal/completion"
	"codingwithyou/internal/document"
	"codingwithyou/internal/input"
	"codingwithyou/internal/logger"
	"codingwithyou/internal/query"
	"codingwithyou/internal/selection"
)

// User-visible messages.
const (
	MsgNoSelection  = "No code selected. Select some code and try again."
	MsgNoQuestion   = "No question entered."
	MsgGenericError = "Something went wrong while talking to the API. Please try again."
	MsgKeySaved     = "API key saved."
	MsgKeyUnchanged = "No API key entered. The stored key is unchanged."
	MsgAPIError     = "The API returned an error. See the document for details."
)

const (
	questionLabel   = "Ask a question about the selected code"
	questionExample = "e.g. Why does this loop never exit?"
)

// Completer sends a prompt and returns the completion.
type Completer interface {
	Complete(ctx context.Context, apiKey, prompt string) (*completion.Result, error)
}

// Credentials provides the API key.
type Credentials interface {
	Get(ctx context.Context) (string, error)
	Reset(ctx context.Context) (string, error)
}

// Opener opens new documents.
type Opener interface {
	Open(name, title, language string) (*document.Document, error)
}

// Notifier surfaces messages to the user.
type Notifier interface {
	Info(text string)
	Success(text string)
	Warning(text string)
	Error(text string)
}

// SelectionFunc reads the current selection.
type SelectionFunc func() (*selection.Selection, error)

// Outcome describes a finished command.
type Outcome struct {
	Action    query.Action
	Selection *selection.Selection
	Prompt    string
	Document  *document.Document
	Result    *completion.Result
}

// Assistant wires the collaborators of the editor commands together.
type Assistant struct {
	completer   Completer
	credentials Credentials
	prompter    input.Prompter
	documents   Opener
	notifier    Notifier
}

// New creates an Assistant.
func New(completer Completer, credentials Credentials, prompter input.Prompter, documents Opener, notifier Notifier) *Assistant {
	return &Assistant{
		completer:   completer,
		credentials: credentials,
		prompter:    prompter,
		documents:   documents,
		notifier:    notifier,
	}
}

// SetAPIKey prompts for a new API key, replacing the stored one.
func (a *Assistant) SetAPIKey(ctx context.Context) error {
	key, err := a.credentials.Reset(ctx)
	if err != nil {
		logger.Error("Failed to set API key", "error", err)
		a.notifier.Error(MsgGenericError)
		return err
	}

	if key == "" {
		a.notifier.Warning(MsgKeyUnchanged)
		return nil
	}
	a.notifier.Success(MsgKeySaved)
	return nil
}

// CommentCode asks the API to add comments to the selection.
func (a *Assistant) CommentCode(ctx context.Context, read SelectionFunc) (*Outcome, error) {
	return a.run(ctx, query.ActionComment, read, "")
}

// DescribeCode asks the API to describe the selection.
func (a *Assistant) DescribeCode(ctx context.Context, read SelectionFunc) (*Outcome, error) {
	return a.run(ctx, query.ActionDescribe, read, "")
}

// RewriteCode asks the API to rewrite the selection.
func (a *Assistant) RewriteCode(ctx context.Context, read SelectionFunc) (*Outcome, error) {
	return a.run(ctx, query.ActionRewrite, read, "")
}

// AskQuestion asks a custom question about the selection.
// An empty question is asked for interactively.
func (a *Assistant) AskQuestion(ctx context.Context, read SelectionFunc, question string) (*Outcome, error) {
	return a.run(ctx, query.ActionAsk, read, question)
}

// run executes a code command. The selection is validated before anything else,
// so an empty selection never reaches the network.
func (a *Assistant) run(ctx context.Context, action query.Action, read SelectionFunc, question string) (*Outcome, error) {
	logger.Debug("Running command", "action", action)

	sel, err := read()
	if err != nil {
		if errors.Is(err, selection.ErrEmptySelection) {
			a.notifier.Error(MsgNoSelection)
		} else {
			a.notifier.Error(err.Error())
		}
		return nil, err
	}

	if action == query.ActionAsk && question == "" {
		question, err = a.prompter.Prompt(ctx, input.Request{Label: questionLabel, Placeholder: questionExample})
		if err != nil {
			logger.Error("Failed to read question", "error", err)
			a.notifier.Error(MsgGenericError)
			return nil, err
		}
	}

	prompt, err := query.Build(action, sel.Text, question)
	if err != nil {
		if errors.Is(err, query.ErrNoQuestion) {
			a.notifier.Error(MsgNoQuestion)
		} else {
			a.notifier.Error(err.Error())
		}
		return nil, err
	}

	apiKey, err := a.credentials.Get(ctx)
	if err != nil {
		logger.Error("Failed to get API key", "error", err)
		a.notifier.Error(MsgGenericError)
		return nil, err
	}
	if apiKey == "" {
		logger.Warn("Sending request without an API key")
	}

	doc, err := a.documents.Open(string(action), action.Title(), sel.Language)
	if err != nil {
		logger.Error("Failed to open document", "error", err)
		a.notifier.Error(MsgGenericError)
		return nil, err
	}

	outcome := &Outcome{
		Action:    action,
		Selection: sel,
		Prompt:    prompt,
		Document:  doc,
	}

	result, err := a.completer.Complete(ctx, apiKey, prompt)
	if err != nil {
		logger.Error("Completion request failed", "action", action, "error", err)
		a.notifier.Error(MsgGenericError)
		return outcome, fmt.Errorf("%s failed: %w", action, err)
	}
	outcome.Result = result

	if err := doc.Replace(result.Text); err != nil {
		logger.Error("Failed to update document", "error", err)
		a.notifier.Error(MsgGenericError)
		return outcome, err
	}

	if result.APIError {
		a.notifier.Warning(MsgAPIError)
	}
	a.notifier.Info(fmt.Sprintf("%s written to %s", doc.Title, doc.Path))
	return outcome, nil
}
