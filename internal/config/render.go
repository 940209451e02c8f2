package config

import (
	"fmt"
	"strings"
)

// optionGroups splits options into top-level keys, [section] keys and
// per-project tables. Section keys are stored without their section prefix.
type optionGroups struct {
	top      []ConfigOption
	order    []string
	sections map[string][]ConfigOption
	tables   []ConfigOption
}

func groupOptions(opts []ConfigOption) optionGroups {
	g := optionGroups{sections: make(map[string][]ConfigOption)}
	for _, o := range opts {
		if _, ok := o.Default.(map[string]any); ok {
			g.tables = append(g.tables, o)
			continue
		}
		section, key, found := strings.Cut(o.Key, ".")
		if !found {
			g.top = append(g.top, o)
			continue
		}
		if _, ok := g.sections[section]; !ok {
			g.order = append(g.order, section)
		}
		g.sections[section] = append(g.sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return g
}

// lines renders the groups. Tables only appear as commented examples.
func (g optionGroups) lines(withTables bool) []string {
	var out []string
	for _, o := range g.top {
		out = appendTOMLOption(out, o.Key, o.Default, o.Comment)
	}
	for _, section := range g.order {
		out = append(out, "["+section+"]")
		for _, o := range g.sections[section] {
			out = appendTOMLOption(out, o.Key, o.Default, o.Comment)
		}
	}
	if withTables {
		for _, o := range g.tables {
			out = appendTableExample(out, o)
		}
	}
	return out
}

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	lines := append([]string{"# cosense-cli configuration (TOML)"}, groupOptions(GetConfigOptions()).lines(true)...)
	return strings.Join(lines, "\n") + "\n"
}

// UpdateTOML adds options missing from existing and comments out unknown
// keys. Keys under a per-project table such as [projects.work] are known.
func UpdateTOML(existing string) (string, bool) {
	lines := strings.Split(existing, "\n")
	opts := GetConfigOptions()

	known := make(map[string]bool, len(opts))
	var tables []string
	for _, o := range opts {
		known[o.Key] = true
		if _, ok := o.Default.(map[string]any); ok {
			tables = append(tables, o.Key)
		}
	}

	seen := make(map[string]bool)
	section := ""
	out := make([]string, 0, len(lines))
	changed := false

	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
			out = append(out, line)
			continue
		}
		if isSectionHeader(trim) {
			section = strings.TrimSpace(trim[1 : len(trim)-1])
			out = append(out, line)
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		if section != "" {
			key = section + "." + key
		}
		seen[key] = true
		if !known[key] && !underTable(key, tables) {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema")
			out = append(out, indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
			continue
		}
		out = append(out, line)
	}

	var missing []ConfigOption
	for _, o := range opts {
		if !seen[o.Key] {
			missing = append(missing, o)
		}
	}
	if added := groupOptions(missing).lines(false); len(added) > 0 {
		out = append(out, "", "# Added by config update")
		out = append(out, added...)
		changed = true
	}

	return strings.Join(out, "\n"), changed
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") {
		return "", false
	}
	if strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

func underTable(key string, tables []string) bool {
	for _, t := range tables {
		if key == t || strings.HasPrefix(key, t+".") {
			return true
		}
	}
	return false
}

func appendTOMLOption(lines []string, key string, value any, comment string) []string {
	if comment != "" {
		lines = append(lines, "# "+comment)
	}
	return append(lines, tomlAssignment(key, value), "")
}

// appendTableExample writes a commented [<table>.<name>] block holding
// the top-level keys a table entry can override.
func appendTableExample(lines []string, o ConfigOption) []string {
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	lines = append(lines, "# ["+o.Key+".<name>]")
	for _, key := range projectKeys {
		lines = append(lines, "# "+tomlAssignment(key, ""))
	}
	return append(lines, "")
}

func tomlAssignment(key string, value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%s = %q", key, v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return fmt.Sprintf("%s = [%s]", key, strings.Join(quoted, ", "))
	default:
		return fmt.Sprintf("%s = %v", key, v)
	}
}
