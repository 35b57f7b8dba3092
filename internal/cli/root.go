// Package cli provides command-line interface setup for codingwithyou.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"codingwithyou/internal/assistant"
	"codingwithyou/internal/completion"
	"codingwithyou/internal/config"
	"codingwithyou/internal/credential"
	"codingwithyou/internal/document"
	"codingwithyou/internal/input"
	"codingwithyou/internal/logger"
	"codingwithyou/internal/output"
	"codingwithyou/internal/secrets"
)

// App represents the codingwithyou CLI application
type App struct {
	v *viper.Viper

	logLevel string
	logFile  string
	noColor  bool

	// configDir and workDir override the resolved directories when set.
	configDir string
	workDir   string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// prompter and viewer replace the terminal implementations when set.
	prompter input.Prompter
	viewer   document.Viewer
}

// NewApp creates a new codingwithyou CLI application
func NewApp() *App {
	return &App{
		v:      viper.New(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// CreateRootCommand creates and configures the root command
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codingwithyou",
		Short: "Send selected code to a chat-completion API",
		Long: `codingwithyou forwards a selection of code to a chat-completion API and writes
the answer into a new document next to your work. Editors call it with a file and
a line range, or pipe the selection on stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return logger.Configure(app.logLevel, app.logFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.StringVar(&app.logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.BoolVar(&app.noColor, "no-color", false, "Disable styled output")
	flags.String(config.KeyEndpoint, "", "Chat-completion endpoint URL")
	flags.String(config.KeyModel, "", "Model to request")
	flags.String(config.KeyOutputDir, "", "Directory response documents are written to")
	flags.String(config.KeyEditor, "", "Editor command used by --open")
	flags.Duration(config.KeyTimeout, 0, "Request timeout (0 waits indefinitely)")

	for _, key := range []string{config.KeyEndpoint, config.KeyModel, config.KeyOutputDir, config.KeyEditor, config.KeyTimeout} {
		if err := app.v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}

	app.addKeyCommand(rootCmd)
	app.addCodeCommands(rootCmd)
	app.addVersionCommand(rootCmd)

	return rootCmd
}

// services holds everything a command needs, built from the loaded configuration.
type services struct {
	notifier    *output.Printer
	printer     *output.Printer
	assistant   *assistant.Assistant
	credentials *credential.Manager
	viewer      document.Viewer
}

func (app *App) buildServices() (*services, error) {
	notifier := output.NewPrinter(app.printerOptions(app.stderr)...)

	loader, err := config.NewLoader(app.v, app.configDir, app.workDir)
	if err != nil {
		notifier.Error(err.Error())
		return nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		notifier.Error(err.Error())
		return nil, err
	}

	prompter := app.prompter
	if prompter == nil {
		prompter = input.NewTerminalPrompter(app.stderr)
	}

	viewer := app.viewer
	if viewer == nil {
		viewer = document.NewEditorViewer(cfg.Editor)
	}

	client := completion.NewClient(completion.Config{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		Timeout:  cfg.Timeout,
	})
	credentials := credential.NewManager(secretStore(cfg), prompter)

	printer := output.NewPrinter(app.printerOptions(app.stdout)...)
	logger.Debug("Output configured", "styled", printer.IsStyled(), "no_color", app.noColor)

	return &services{
		notifier:    notifier,
		printer:     printer,
		assistant:   assistant.New(client, credentials, prompter, document.NewWorkspace(cfg.OutputDir), notifier),
		credentials: credentials,
		viewer:      viewer,
	}, nil
}

func (app *App) printerOptions(w io.Writer) []output.Option {
	options := []output.Option{output.WithWriter(w)}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			options = append(options, output.WithWordWrap(width))
		}
	}
	if app.noColor {
		options = append(options, output.PlainText())
	}
	return options
}

// secretStore returns the configured credential store. The keychain store
// keeps the secrets file as a fallback for systems without a keychain.
func secretStore(cfg *config.Config) secrets.Store {
	file := secrets.NewFileStore(cfg.SecretsFile)
	if cfg.SecretStore == config.SecretStoreFile {
		return file
	}
	return secrets.NewKeyringStore(config.AppName, file)
}
