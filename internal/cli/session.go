package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/cosense/internal/config"
	"github.com/mithrel/cosense/internal/keys"
	"github.com/mithrel/cosense/internal/wire"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the connect.sid cookie used for private projects",
	}
	cmd.AddCommand(newSessionSetCmd())
	cmd.AddCommand(newSessionClearCmd())
	cmd.AddCommand(newSessionStatusCmd())
	return cmd
}

func newSessionSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [sid]",
		Short: "Store the session cookie for the project (reads stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if app.Project == "" {
				return errors.New("no project configured; set project or pass --project")
			}
			sid := ""
			if len(args) > 0 {
				sid = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read sid: %w", err)
				}
				sid = line
			}
			sid = strings.TrimSpace(sid)
			if sid == "" {
				return errors.New("empty sid")
			}
			where, err := putSession(app, sid)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored session for %s in %s\n", app.Project, where)
			return nil
		},
	}
}

func newSessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored session cookie for the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if app.Project == "" {
				return errors.New("no project configured; set project or pass --project")
			}
			if app.Cfg.GetString("session.provider") == "config" {
				path := configPath(app)
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				updated, changed := config.DeleteProjectValue(string(data), app.Project, "sid")
				if changed {
					if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
						return err
					}
				}
			} else if err := app.Sessions.Delete(app.Project); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared session for %s\n", app.Project)
			return nil
		},
	}
}

func newSessionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the session cookie comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			provider := app.Cfg.GetString("session.provider")
			if provider == "" {
				provider = "none"
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "project: %s\n", orMissing(app.Project))
			_, _ = fmt.Fprintf(out, "provider: %s\n", provider)
			if provider == "keyring" {
				_, _ = fmt.Fprintf(out, "keyring: %s\n", availability(keys.KeyringAvailable()))
			}
			sid, err := keys.Lookup(app.Sessions, app.Project)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "sid: %s\n", mask(sid))
			return nil
		},
	}
}

// putSession writes sid with the configured provider and reports where.
func putSession(app *wire.App, sid string) (string, error) {
	if app.Cfg.GetString("session.provider") != "config" {
		if err := app.Sessions.Put(app.Project, sid); err != nil {
			return "", err
		}
		return "the system keyring", nil
	}
	path := configPath(app)
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	updated := config.SetProjectValue(string(existing), app.Project, "sid", sid)
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func configPath(app *wire.App) string {
	if p := app.Cfg.ConfigFileUsed(); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func mask(sid string) string {
	switch {
	case sid == "":
		return "(missing)"
	case len(sid) <= 8:
		return strings.Repeat("*", len(sid))
	default:
		return sid[:4] + strings.Repeat("*", len(sid)-8) + sid[len(sid)-4:]
	}
}

func orMissing(s string) string {
	if s == "" {
		return "(missing)"
	}
	return s
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}
