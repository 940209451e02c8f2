// Package editor lets the user draft a page in $VISUAL or $EDITOR.
package editor

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	TitlePrefix = "Title: "
	TagsPrefix  = "Tags: "
	separator   = "---"
)

// ComposeContent creates the text presented to the editor.
func ComposeContent(title string, tags []string, body string) string {
	var b bytes.Buffer
	b.WriteString("# Cosense page draft\n")
	b.WriteString("# Lines starting with '#' above the '---' line are ignored.\n")
	b.WriteString("# Set Title and Tags (comma-separated). After '---', write the page in Cosense notation.\n")
	b.WriteString(TitlePrefix)
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(TagsPrefix)
	if len(tags) > 0 {
		b.WriteString(strings.Join(tags, ", "))
	}
	b.WriteString("\n" + separator + "\n")
	if body != "" {
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		b.WriteString(body)
	}
	return b.String()
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathForDraft returns a scratch file path for a page draft.
func PathForDraft(project, title string) (string, error) {
	name := sanitize(project) + "." + sanitize(title) + ".cosense.txt"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "cosense", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "cosense", "drafts", name), nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// OpenAt opens the editor at path with initial content and returns final bytes and whether it changed.
func OpenAt(path string, initial []byte) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	// VISUAL/EDITOR may carry flags, so run them through sh.
	ed := os.Getenv("VISUAL")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	var cmd *exec.Cmd
	if strings.TrimSpace(ed) != "" {
		cmd = exec.Command("sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	} else {
		prog, err := PreferredEditor()
		if err != nil {
			return nil, false, err
		}
		cmd = exec.Command(prog, path)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}

// ParseDraft extracts title, tags and body from the editor output.
// The body keeps its indentation since it is significant in the notation.
func ParseDraft(s string) (title string, tags []string, body string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	inBody := false
	var bodyLines []string
	for _, line := range lines {
		if inBody {
			bodyLines = append(bodyLines, line)
			continue
		}
		trim := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trim, "#"):
		case strings.HasPrefix(line, strings.TrimSpace(TitlePrefix)):
			title = strings.TrimSpace(strings.TrimPrefix(line, strings.TrimSpace(TitlePrefix)))
		case strings.HasPrefix(line, strings.TrimSpace(TagsPrefix)):
			raw := strings.TrimSpace(strings.TrimPrefix(line, strings.TrimSpace(TagsPrefix)))
			for _, t := range strings.Split(raw, ",") {
				tt := strings.TrimPrefix(strings.TrimSpace(t), "#")
				if tt != "" {
					tags = append(tags, tt)
				}
			}
		case trim == separator:
			inBody = true
		}
	}
	for len(bodyLines) > 0 && strings.TrimSpace(bodyLines[0]) == "" {
		bodyLines = bodyLines[1:]
	}
	body = strings.TrimRight(strings.Join(bodyLines, "\n"), " \t\n")
	return title, tags, body
}

// PageBody is the text sent as the new page body: the draft followed by a
// hashtag line when tags are set. Tags containing spaces use the bracket form.
func PageBody(body string, tags []string) string {
	if len(tags) == 0 {
		return body
	}
	refs := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.ContainsAny(t, " \t") {
			refs = append(refs, "["+t+"]")
		} else {
			refs = append(refs, "#"+t)
		}
	}
	line := strings.Join(refs, " ")
	if body == "" {
		return line
	}
	return body + "\n" + line
}
