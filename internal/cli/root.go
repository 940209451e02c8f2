package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/cosense/internal/config"
	"github.com/mithrel/cosense/internal/wire"
)

type ctxKey string

const appKey ctxKey = "app"

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	var cfgPath string
	var project string
	var verbose bool

	cmd := &cobra.Command{
		Use:           "cosense-cli",
		Short:         "Search, read and write Cosense pages from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			if verbose {
				v.Set("verbose", true)
			}
			var logOut io.Writer
			if v.GetBool("verbose") {
				logOut = cmd.ErrOrStderr()
			}
			app, err := wire.BuildApp(cmd.Context(), v, wire.Overrides{Project: project, LogOutput: logOut})
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app, ok := cmd.Context().Value(appKey).(*wire.App); ok {
				return app.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml)")
	cmd.PersistentFlags().StringVarP(&project, "project", "p", "", "project to use instead of the configured one")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log HTTP and cache activity to stderr")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newPageCmd())
	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newBookCmd())
	cmd.AddCommand(newSessionCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func getApp(cmd *cobra.Command) *wire.App {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*wire.App)
}
