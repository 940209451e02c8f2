package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/mithrel/cosense/internal/bookpage"
	"github.com/mithrel/cosense/internal/present/format"
	"github.com/mithrel/cosense/internal/util"
)

// readClipboard is replaced in tests.
var readClipboard = clipboard.ReadAll

func newBookCmd() *cobra.Command {
	var open, asJSON bool
	var tag string
	cmd := &cobra.Command{
		Use:   "book [url]",
		Short: "Prepare a page for a book from its product page",
		Long: "Fetch a product page, extract the title and cover image and print " +
			"the URL that creates the page. The URL is read from the clipboard when omitted.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if app.Project == "" {
				return errors.New("no project configured; set project or pass --project")
			}
			raw := ""
			if len(args) > 0 {
				raw = args[0]
			} else {
				s, err := readClipboard()
				if err != nil {
					return fmt.Errorf("read clipboard: %w", err)
				}
				raw = strings.TrimSpace(s)
			}
			if tag == "" {
				tag = app.Cfg.GetString("book.tag")
			}

			fetcher := bookpage.NewFetcher(time.Duration(app.Cfg.GetInt("api.timeout_seconds"))*time.Second, app.Log)
			b := bookpage.NewBuilder(fetcher, bookpage.Options{
				BaseURL:     app.BaseURL,
				Project:     app.Project,
				Tag:         tag,
				ImageHeight: app.Cfg.GetInt("book.image_height"),
			})
			draft, err := b.Create(cmd.Context(), raw)
			if err != nil {
				return err
			}
			if asJSON {
				if err := format.WriteJSON(cmd.OutOrStdout(), draft, true); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), draft.PageURL)
			}
			if open {
				return util.OpenURL(draft.PageURL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "open the creation URL in the browser")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the whole draft as JSON")
	cmd.Flags().StringVar(&tag, "tag", "", "hashtag for the page (default book.tag)")
	return cmd
}
