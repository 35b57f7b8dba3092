package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"codingwithyou/internal/assistant"
	"codingwithyou/internal/output"
	"codingwithyou/internal/query"
	"codingwithyou/internal/selection"
)

// selectionFlags are shared by every code command.
type selectionFlags struct {
	file      string
	lines     string
	clipboard bool
	language  string
	open      bool
	print     bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "File containing the selection (default: read stdin)")
	cmd.Flags().StringVarP(&f.lines, "lines", "l", "", "Line range within --file, e.g. 10:20, 10: or :20")
	cmd.Flags().BoolVar(&f.clipboard, "clipboard", false, "Read the selection from the clipboard")
	cmd.Flags().StringVar(&f.language, "language", "", "Language of the selection when it is not read from a file")
	cmd.Flags().BoolVar(&f.open, "open", false, "Open the response document in an editor")
	cmd.Flags().BoolVarP(&f.print, "print", "p", false, "Print the response to stdout")
	cmd.MarkFlagsMutuallyExclusive("file", "clipboard")
	if !selection.ClipboardAvailable() {
		_ = cmd.Flags().MarkHidden("clipboard")
	}
}

// errClipboardUnavailable is returned for --clipboard on platforms without clipboard support.
var errClipboardUnavailable = errors.New("the clipboard is not supported on this platform; use --file or stdin instead")

// codeRunner runs one assistant command on a selection.
type codeRunner func(a *assistant.Assistant, ctx context.Context, read assistant.SelectionFunc) (*assistant.Outcome, error)

// addKeyCommand adds the credential command
func (app *App) addKeyCommand(rootCmd *cobra.Command) {
	var clearKey bool

	keyCmd := &cobra.Command{
		Use:   "set-api-key",
		Short: "Set or reset the stored API key",
		Long: `Prompt for an API key and store it, replacing any key stored before.
With --clear the stored key is removed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.buildServices()
			if err != nil {
				return reported(err)
			}

			if clearKey {
				if err := svc.credentials.Clear(); err != nil {
					svc.notifier.Error(err.Error())
					return reported(err)
				}
				svc.notifier.Success("API key removed.")
				return nil
			}
			return reported(svc.assistant.SetAPIKey(cmd.Context()))
		},
	}
	keyCmd.Flags().BoolVar(&clearKey, "clear", false, "Remove the stored API key")

	rootCmd.AddCommand(keyCmd)
}

// addCodeCommands adds the commands that operate on a selection
func (app *App) addCodeCommands(rootCmd *cobra.Command) {
	var commentFlags, describeFlags, rewriteFlags, askFlags selectionFlags
	var showDiff bool
	var question string

	commentCmd := &cobra.Command{
		Use:   "comment",
		Short: "Add comments to the selected code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runCode(cmd, (*assistant.Assistant).CommentCode, &commentFlags, false)
		},
	}
	commentFlags.register(commentCmd)

	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Describe what the selected code does",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runCode(cmd, (*assistant.Assistant).DescribeCode, &describeFlags, false)
		},
	}
	describeFlags.register(describeCmd)

	rewriteCmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rewrite the selected code to be cleaner and more efficient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runCode(cmd, (*assistant.Assistant).RewriteCode, &rewriteFlags, showDiff)
		},
	}
	rewriteFlags.register(rewriteCmd)
	rewriteCmd.Flags().BoolVar(&showDiff, "diff", false, "Print a diff between the selection and the rewritten code")

	askCmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask a custom question about the selected code",
		Long: `Ask a custom question about the selected code. Without --question the
question is asked for interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ask := func(a *assistant.Assistant, ctx context.Context, read assistant.SelectionFunc) (*assistant.Outcome, error) {
				return a.AskQuestion(ctx, read, question)
			}
			return app.runCode(cmd, ask, &askFlags, false)
		},
	}
	askFlags.register(askCmd)
	askCmd.Flags().StringVarP(&question, "question", "q", "", "Question to ask")

	rootCmd.AddCommand(commentCmd, describeCmd, rewriteCmd, askCmd)
}

func (app *App) runCode(cmd *cobra.Command, run codeRunner, flags *selectionFlags, showDiff bool) error {
	svc, err := app.buildServices()
	if err != nil {
		return reported(err)
	}

	outcome, err := run(svc.assistant, cmd.Context(), app.selectionReader(flags))
	if err != nil {
		return reported(err)
	}

	if flags.print {
		text := outcome.Result.Text
		if codeAction(outcome.Action) && !outcome.Result.APIError && !strings.Contains(text, "```") {
			text = output.FenceCode(text, outcome.Document.Language)
		}
		if err := svc.printer.Markdown(text); err != nil {
			svc.notifier.Warning(err.Error())
		}
	}
	if showDiff && !outcome.Result.APIError {
		svc.printer.Diff(outcome.Selection.Text, assistant.ExtractCode(outcome.Result.Text))
	}
	if flags.open {
		if err := svc.viewer.Show(outcome.Document); err != nil {
			svc.notifier.Warning(err.Error())
		}
	}
	return nil
}

// codeAction reports whether the action answers with code rather than prose.
func codeAction(action query.Action) bool {
	return action == query.ActionComment || action == query.ActionRewrite
}

// selectionReader picks the selection source from the flags.
func (app *App) selectionReader(flags *selectionFlags) assistant.SelectionFunc {
	return func() (*selection.Selection, error) {
		switch {
		case flags.clipboard:
			if !selection.ClipboardAvailable() {
				return nil, errClipboardUnavailable
			}
			return selection.FromClipboard(flags.language)
		case flags.file != "":
			r, err := selection.ParseLineRange(flags.lines)
			if err != nil {
				return nil, err
			}
			sel, err := selection.FromFile(flags.file, r)
			if err != nil {
				return nil, err
			}
			if flags.language != "" {
				sel.Language = flags.language
			}
			return sel, nil
		default:
			// An interactive stdin carries no selection.
			if f, ok := app.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return nil, selection.ErrEmptySelection
			}
			return selection.FromReader(app.stdin, flags.language)
		}
	}
}
