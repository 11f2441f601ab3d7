// Package cli is the recipebox command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pageza/recipebox/internal/app"
	"github.com/pageza/recipebox/internal/auth"
	"github.com/pageza/recipebox/internal/client"
	"github.com/pageza/recipebox/internal/ui"
)

const (
	keyAPIURL    = "api_url"
	keyStatePath = "state_path"
	keyEditor    = "editor"
	keyVerbose   = "verbose"
)

// env is shared by every command of one invocation
type env struct {
	v      *viper.Viper
	app    *app.App
	styled bool
	now    func() time.Time
}

func (e *env) requireUser() (string, error) {
	id, err := e.app.RequireUser()
	if errors.Is(err, auth.ErrNoSession) {
		return "", errors.New("not signed in; run `recipebox login` first")
	}
	return id, err
}

// close releases the app once; cobra skips post-run hooks after a failed
// command, so Execute calls it too.
func (e *env) close() error {
	if e.app == nil {
		return nil
	}
	a := e.app
	e.app = nil
	return a.Close()
}

// newRootCommand builds the command tree and the state its commands share
func newRootCommand() (*cobra.Command, *env) {
	e := &env{v: viper.New(), now: time.Now}

	root := &cobra.Command{
		Use:           "recipebox",
		Short:         "Import, keep and edit recipes as markdown",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.close()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ~/.config/recipebox/config.yaml)")
	flags.String("api-url", client.DefaultBaseURL, "API base URL")
	flags.String("state", "", "local state file")
	flags.Bool("verbose", false, "log diagnostics to stderr")
	_ = e.v.BindPFlag(keyAPIURL, flags.Lookup("api-url"))
	_ = e.v.BindPFlag(keyStatePath, flags.Lookup("state"))
	_ = e.v.BindPFlag(keyVerbose, flags.Lookup("verbose"))

	root.AddCommand(
		newSignUpCommand(e),
		newLoginCommand(e),
		newLogoutCommand(e),
		newRecoverCommand(e),
		newChangePasswordCommand(e),
		newListCommand(e),
		newShowCommand(e),
		newImportCommand(e),
		newEditCommand(e),
		newDeleteCommand(e),
		newSettingsCommand(e),
		newUsageCommand(e),
		newBetaCommand(e),
	)
	return root, e
}

// run executes the command tree and closes the app whether or not the
// command succeeded.
func run(ctx context.Context, root *cobra.Command, e *env) error {
	err := root.ExecuteContext(ctx)
	if closeErr := e.close(); err == nil {
		err = closeErr
	}
	return err
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	root, e := newRootCommand()
	if err := run(context.Background(), root, e); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError(err.Error()))
		return 1
	}
	return 0
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "recipebox")
}

func (e *env) loadConfig(cmd *cobra.Command) error {
	dir := configDir()
	e.v.SetDefault(keyAPIURL, client.DefaultBaseURL)
	e.v.SetDefault(keyStatePath, filepath.Join(dir, "state.db"))
	e.v.SetDefault(keyEditor, "vi")

	e.v.SetEnvPrefix("RECIPEBOX")
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	e.v.AutomaticEnv()
	// $EDITOR is the usual place people set this
	_ = e.v.BindEnv(keyEditor, "RECIPEBOX_EDITOR", "VISUAL", "EDITOR")

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		e.v.SetConfigFile(path)
	} else {
		e.v.SetConfigName("config")
		e.v.SetConfigType("yaml")
		e.v.AddConfigPath(dir)
	}
	if err := e.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func (e *env) setup(cmd *cobra.Command) error {
	if err := e.loadConfig(cmd); err != nil {
		return err
	}

	log.SetOutput(io.Discard)
	if e.v.GetBool(keyVerbose) {
		log.SetOutput(cmd.ErrOrStderr())
	}
	e.styled = ui.IsTerminal()

	a, err := app.New(app.Config{
		BaseURL:   e.v.GetString(keyAPIURL),
		StatePath: e.v.GetString(keyStatePath),
	})
	if err != nil {
		return err
	}
	if err := a.Start(cmd.Context()); err != nil {
		_ = a.Close()
		return err
	}
	e.app = a
	return nil
}
