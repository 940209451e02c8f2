package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/cosense/internal/bookpage"
	"github.com/mithrel/cosense/internal/client"
	"github.com/mithrel/cosense/internal/editor"
	"github.com/mithrel/cosense/internal/present"
	"github.com/mithrel/cosense/internal/present/export"
	"github.com/mithrel/cosense/internal/render"
	"github.com/mithrel/cosense/internal/util"
)

func newPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Read, list and create pages",
	}
	cmd.AddCommand(newPageShowCmd())
	cmd.AddCommand(newPageListCmd())
	cmd.AddCommand(newPageOpenCmd())
	cmd.AddCommand(newPageNewCmd())
	cmd.AddCommand(newPageExportCmd())
	return cmd
}

func newPageShowCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:               "show <title>",
		Short:             "Display a page converted to Markdown",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeTitles,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := presentOptions(cmd, app, app.Cfg.GetString("output"))
			if err != nil {
				return err
			}
			if raw {
				opts.Mode = present.ModePlain
			}
			p, err := app.Pages.Show(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if p.Stale {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: server unreachable, showing cached copy")
			}
			if p.ConversionError != "" && opts.Mode != present.ModePlain {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Failed to convert Cosense to Markdown: %s\n", p.ConversionError)
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderPage(w, p, opts)
			})
		},
	}
	addOutputFlags(cmd, "")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the page text as stored")
	return cmd
}

func newPageListCmd() *cobra.Command {
	var limit, skip int
	var sort string
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pages of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := presentOptions(cmd, app, "plain")
			if err != nil {
				return err
			}
			if !all {
				list, err := app.Pages.ListPages(cmd.Context(), client.ListOptions{Limit: limit, Skip: skip, Sort: sort})
				if err != nil {
					return err
				}
				return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
					return present.RenderPageList(w, list, opts)
				})
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				sw, err := present.PageStream(w, opts)
				if err != nil {
					return err
				}
				for next := skip; ; {
					list, err := app.Pages.ListPages(cmd.Context(), client.ListOptions{Limit: limit, Skip: next, Sort: sort})
					if err != nil {
						return err
					}
					if err := sw.WritePages(list.Pages); err != nil {
						return err
					}
					next += len(list.Pages)
					if len(list.Pages) == 0 || next >= list.Count {
						break
					}
				}
				return sw.Close()
			})
		},
	}
	addOutputFlags(cmd, "")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "pages per request")
	cmd.Flags().IntVar(&skip, "skip", 0, "pages to skip")
	cmd.Flags().StringVar(&sort, "sort", "updated", "sort order: updated, created, accessed, linked, views, title")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page, streaming results")
	_ = cmd.RegisterFlagCompletionFunc("sort", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"updated", "created", "accessed", "linked", "views", "title"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newPageOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "open <title>",
		Short:             "Open a page in the browser",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeTitles,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			u := app.Client.PageURL(strings.Join(args, " "))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), u)
			return util.OpenURL(u)
		},
	}
}

func newPageNewCmd() *cobra.Command {
	var tags []string
	var open bool
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Write a new page in $EDITOR and print its creation URL",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if app.Project == "" {
				return errors.New("no project configured; set project or pass --project")
			}
			title := strings.TrimSpace(strings.Join(args, " "))

			path, err := editor.PathForDraft(app.Project, title)
			if err != nil {
				return err
			}
			out, changed, err := editor.OpenAt(path, []byte(editor.ComposeContent(title, tags, "")))
			if err != nil {
				return err
			}
			removeDraft(app.Log, path)

			gotTitle, gotTags, body := editor.ParseDraft(string(out))
			if !changed && title == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No edits; nothing to create.")
				return nil
			}
			if gotTitle == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Page aborted: empty title.")
				return nil
			}

			text := editor.PageBody(body, gotTags)
			md, convErr := render.Convert(text, render.Options{BaseURL: app.BaseURL, Project: app.Project, Untitled: true})
			if convErr != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Failed to convert Cosense to Markdown: %v\n", convErr)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s\n\n", md)

			u := bookpage.NewPageURL(app.BaseURL, app.Project, gotTitle, text)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), u)
			if open {
				return util.OpenURL(u)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "tags to prefill (comma-separated or repeated)")
	cmd.Flags().BoolVar(&open, "open", false, "open the creation URL in the browser")
	return cmd
}

func newPageExportCmd() *cobra.Command {
	var formatName, dir string
	cmd := &cobra.Command{
		Use:               "export <title>...",
		Short:             "Write pages to Markdown or PDF files",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeTitles,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			f, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			w, err := export.New(dir)
			if err != nil {
				return err
			}
			for _, title := range args {
				p, err := app.Pages.Show(cmd.Context(), title)
				if err != nil {
					return fmt.Errorf("export %s: %w", title, err)
				}
				path, err := w.Write(p, f)
				if err != nil {
					return fmt.Errorf("export %s: %w", title, err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "md", "file format: md or pdf")
	cmd.Flags().StringVarP(&dir, "output-dir", "d", ".", "directory to write files to")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"md", "pdf"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func removeDraft(lg *log.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		lg.Printf("cli: remove draft %s: %v", path, err)
	}
}
