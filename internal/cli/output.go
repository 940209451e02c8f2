package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/cosense/internal/present"
	"github.com/mithrel/cosense/internal/wire"
)

func addOutputFlags(cmd *cobra.Command, def string) {
	cmd.Flags().StringP("output", "o", def, "output mode: "+strings.Join(present.ModeNames, ", "))
	cmd.Flags().Bool("no-headers", false, "omit column headers in plain output")
	cmd.Flags().Bool("compact", false, "compact JSON output")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return present.ModeNames, cobra.ShellCompDirectiveNoFileComp
	})
}

// presentOptions reads output flags. fallback is used when --output was
// left empty.
func presentOptions(cmd *cobra.Command, app *wire.App, fallback string) (present.Options, error) {
	name, _ := cmd.Flags().GetString("output")
	if name == "" {
		name = fallback
	}
	mode, ok := present.ParseMode(name)
	if !ok {
		return present.Options{}, fmt.Errorf("unknown output mode %q", name)
	}
	noHeaders, _ := cmd.Flags().GetBool("no-headers")
	compact, _ := cmd.Flags().GetBool("compact")
	return present.Options{
		Mode:       mode,
		JSONIndent: !compact,
		Headers:    !noHeaders,
		Style:      app.Cfg.GetString("pretty.style"),
		WordWrap:   app.Cfg.GetInt("pretty.word_wrap"),
		PageURL:    app.Client.PageURL,
	}, nil
}
