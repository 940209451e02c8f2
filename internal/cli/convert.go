package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mithrel/cosense/internal/notation"
	"github.com/mithrel/cosense/internal/render"
)

func newConvertCmd() *cobra.Command {
	var untitled, ast bool
	var baseURL, project string
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert Cosense notation to Markdown",
		Long:  "Convert Cosense notation read from file, or stdin when omitted, to Markdown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if ast {
				blocks, err := notation.Parse(text, notation.Options{HasTitle: !untitled})
				if err != nil {
					return err
				}
				pp.ColoringEnabled = isTerminal(out)
				_, err = pp.Fprintln(out, blocks)
				return err
			}

			opts := render.Options{BaseURL: app.BaseURL, Project: app.Project, Untitled: untitled}
			if baseURL != "" {
				opts.BaseURL = strings.TrimRight(baseURL, "/")
			}
			if project != "" {
				opts.Project = project
			}
			md, err := render.Convert(text, opts)
			if err != nil {
				_, _ = io.WriteString(out, md)
				return err
			}
			_, err = io.WriteString(out, strings.TrimRight(md, "\n")+"\n")
			return err
		},
	}
	cmd.Flags().BoolVar(&untitled, "untitled", false, "treat the first line as body text instead of the title")
	cmd.Flags().BoolVar(&ast, "ast", false, "print the parsed syntax tree instead of Markdown")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "base URL for links (default from config)")
	cmd.Flags().StringVar(&project, "link-project", "", "project for relative links (default from config)")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(b), nil
}
