package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/cosense/internal/pages"
	"github.com/mithrel/cosense/internal/present"
	"github.com/mithrel/cosense/internal/util"
	"github.com/mithrel/cosense/pkg/api"
)

func newSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search pages in the project",
		Long: "Search pages in the project. Without a query in a terminal the " +
			"interactive browser opens.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			query := strings.TrimSpace(strings.Join(args, " "))

			fallback := "plain"
			if isTerminal(cmd.OutOrStdout()) {
				fallback = "tui"
			}
			opts, err := presentOptions(cmd, app, fallback)
			if err != nil {
				return err
			}
			if opts.Mode == present.ModeTUI {
				seed := api.SearchResult{SearchQuery: query}
				return present.RenderSearch(cmd.Context(), cmd.OutOrStdout(), app.Pages, seed, opts, util.OpenURL)
			}
			if query == "" {
				return errors.New("search query required")
			}

			res, err := app.Pages.Search(cmd.Context(), query)
			var stale *pages.StaleError
			switch {
			case errors.As(err, &stale):
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			case err != nil:
				return err
			}
			if limit <= 0 {
				limit = app.Cfg.GetInt("search.limit")
			}
			if limit > 0 && len(res.Pages) > limit {
				res.Pages = res.Pages[:limit]
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderSearch(cmd.Context(), w, app.Pages, res, opts, util.OpenURL)
			})
		},
	}
	addOutputFlags(cmd, "")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results shown (default search.limit)")
	return cmd
}
