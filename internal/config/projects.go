package config

import (
	"fmt"
	"strings"
)

// projectKeys are the keys a [projects.<name>] table may set.
var projectKeys = []string{"base_url", "sid"}

// SetProjectValue sets key inside the [projects.<name>] section, creating
// the section when missing. Other keys in the section are kept.
func SetProjectValue(existing, name, key string, value any) string {
	header := projectHeader(name)
	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines)+4)
	found := false

	for i := 0; i < len(lines); {
		line := lines[i]
		if strings.TrimSpace(line) != header {
			out = append(out, line)
			i++
			continue
		}
		found = true
		out = append(out, line)
		i++
		written := false
		for i < len(lines) && !isSectionHeader(strings.TrimSpace(lines[i])) {
			if k, ok := parseTOMLKey(lines[i]); ok && k == key {
				if !written {
					out = append(out, tomlAssignment(key, value))
					written = true
				}
				i++
				continue
			}
			out = append(out, lines[i])
			i++
		}
		if !written {
			out = insertBeforeTrailingBlanks(out, tomlAssignment(key, value))
		}
	}

	if !found {
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, header, tomlAssignment(key, value))
	}
	return strings.Join(out, "\n")
}

// DeleteProjectValue removes key from the [projects.<name>] section.
func DeleteProjectValue(existing, name, key string) (string, bool) {
	header := projectHeader(name)
	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines))
	removed := false
	inSection := false

	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if isSectionHeader(trim) {
			inSection = trim == header
		}
		if inSection {
			if k, ok := parseTOMLKey(line); ok && k == key {
				removed = true
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), removed
}

func projectHeader(name string) string {
	if isBareKey(name) {
		return "[projects." + name + "]"
	}
	return fmt.Sprintf("[projects.%q]", name)
}

func isBareKey(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

func insertBeforeTrailingBlanks(lines []string, line string) []string {
	i := len(lines)
	for i > 0 && strings.TrimSpace(lines[i-1]) == "" {
		i--
	}
	out := append([]string{}, lines[:i]...)
	out = append(out, line)
	return append(out, lines[i:]...)
}

func isSectionHeader(trim string) bool {
	if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
		return false
	}
	return strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]")
}
