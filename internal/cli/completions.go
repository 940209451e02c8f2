package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/cosense/internal/config"
	"github.com/mithrel/cosense/internal/wire"
)

const titleCompletionLimit = 50

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate Bash completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate Zsh completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate Fish completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})

	return cmd
}

// completeTitles offers page titles remembered in the local cache.
// Completion bypasses PersistentPreRunE, so the app is built here.
func completeTitles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, owned, err := completionApp(ctx, cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	if owned {
		defer func() { _ = app.Close() }()
	}

	titles, err := app.Pages.CompleteTitles(ctx, toComplete, titleCompletionLimit)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return titles, cobra.ShellCompDirectiveNoFileComp
}

// completionApp returns the running app, or builds one that the caller
// owns.
func completionApp(ctx context.Context, cmd *cobra.Command) (*wire.App, bool, error) {
	if app, ok := ctx.Value(appKey).(*wire.App); ok {
		return app, false, nil
	}
	v := viper.New()
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
	}
	if err := config.Load(ctx, v); err != nil {
		return nil, false, err
	}
	project := ""
	if f := cmd.Flag("project"); f != nil {
		project = f.Value.String()
	}
	app, err := wire.BuildApp(ctx, v, wire.Overrides{Project: project, LogOutput: io.Discard})
	return app, true, err
}
