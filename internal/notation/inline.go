package notation

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// decoChars are the characters allowed in a decoration prefix.
const decoChars = `*!"#%&'()~|+,-./{}<>_`

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true,
}

func parseInline(s string) []Node {
	var nodes []Node
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			nodes = append(nodes, Plain{Text: plain.String()})
			plain.Reset()
		}
	}
	for i := 0; i < len(s); {
		if n, w := matchAt(s, i); w > 0 {
			flush()
			nodes = append(nodes, n)
			i += w
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		plain.WriteString(s[i : i+size])
		i += size
	}
	flush()
	return nodes
}

func matchAt(s string, i int) (Node, int) {
	rest := s[i:]
	switch rest[0] {
	case '`':
		return matchCode(rest)
	case '[':
		return matchBracket(rest)
	case '#':
		if atBoundary(s, i) {
			return matchHashTag(rest)
		}
	case 'h':
		if atBoundary(s, i) {
			return matchBareURL(rest)
		}
	}
	return nil, 0
}

// atBoundary reports whether position i starts the string or follows
// whitespace.
func atBoundary(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsSpace(r)
}

func matchCode(rest string) (Node, int) {
	end := strings.IndexByte(rest[1:], '`')
	if end < 0 {
		return nil, 0
	}
	w := end + 2
	return Code{Text: rest[1 : end+1], Raw: rest[:w]}, w
}

func matchHashTag(rest string) (Node, int) {
	w := 1
	for w < len(rest) {
		r, size := utf8.DecodeRuneInString(rest[w:])
		if unicode.IsSpace(r) {
			break
		}
		w += size
	}
	if w == 1 {
		return nil, 0
	}
	return HashTag{Href: rest[1:w], Raw: rest[:w]}, w
}

func matchBareURL(rest string) (Node, int) {
	if !strings.HasPrefix(rest, "http://") && !strings.HasPrefix(rest, "https://") {
		return nil, 0
	}
	w := strings.IndexFunc(rest, unicode.IsSpace)
	if w < 0 {
		w = len(rest)
	}
	if !isURL(rest[:w]) {
		return nil, 0
	}
	return Link{PathType: PathAbsolute, Href: rest[:w], Raw: rest[:w]}, w
}

func matchBracket(rest string) (Node, int) {
	if strings.HasPrefix(rest, "[[") {
		if end := strings.Index(rest[2:], "]]"); end > 0 {
			w := end + 4
			return strongNode(rest[2:end+2], rest[:w]), w
		}
	}
	end := closingBracket(rest)
	if end < 0 {
		return nil, 0
	}
	w := end + 1
	inner, raw := rest[1:end], rest[:w]
	if inner == "" {
		return nil, 0
	}
	if strings.TrimSpace(inner) == "" {
		return Blank{Text: inner, Raw: raw}, w
	}
	if strings.HasPrefix(inner, "$ ") {
		return Formula{Formula: inner[2:], Raw: raw}, w
	}
	if decos, body, ok := splitDecoration(inner); ok {
		return Decoration{Decos: decos, Nodes: parseInline(body), Raw: raw}, w
	}
	if strings.ContainsAny(inner, "[]") {
		return nil, 0
	}
	if strings.HasSuffix(inner, ".icon") {
		return Icon{Path: strings.TrimSuffix(inner, ".icon"), Raw: raw}, w
	}
	return linkNode(inner, raw), w
}

// closingBracket finds the ']' matching the '[' at rest[0], allowing one
// level of nested bracket pairs inside decorations.
func closingBracket(rest string) int {
	depth := 0
	for i := 1; i < len(rest); i++ {
		switch rest[i] {
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func strongNode(inner, raw string) Node {
	switch {
	case isImageURL(inner):
		return Image{Src: inner, Strong: true, Raw: raw}
	case strings.HasSuffix(inner, ".icon"):
		return Icon{Path: strings.TrimSuffix(inner, ".icon"), Strong: true, Raw: raw}
	}
	return Strong{Nodes: parseInline(inner), Raw: raw}
}

// splitDecoration splits "[** text]" style content into its decoration set
// and body.
func splitDecoration(inner string) ([]string, string, bool) {
	sp := strings.IndexByte(inner, ' ')
	if sp <= 0 || sp == len(inner)-1 {
		return nil, "", false
	}
	prefix := inner[:sp]
	if strings.Trim(prefix, decoChars) != "" {
		return nil, "", false
	}
	stars := strings.Count(prefix, "*")
	var decos []string
	if stars > 0 {
		if stars > 10 {
			stars = 10
		}
		decos = append(decos, "*-"+strconv.Itoa(stars))
	}
	seen := map[rune]bool{'*': true}
	for _, r := range prefix {
		if seen[r] {
			continue
		}
		seen[r] = true
		decos = append(decos, string(r))
	}
	return decos, inner[sp+1:], true
}

func linkNode(inner, raw string) Node {
	if strings.HasPrefix(inner, "/") {
		return Link{PathType: PathRoot, Href: inner, Raw: raw}
	}
	fields := strings.Fields(inner)
	first, last := fields[0], fields[len(fields)-1]
	switch {
	case len(fields) == 1 && isImageURL(first):
		return Image{Src: first, Raw: raw}
	case isURL(first):
		label := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(inner), first))
		return Link{PathType: PathAbsolute, Href: first, Content: label, Raw: raw}
	case isURL(last):
		label := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(inner), last))
		return Link{PathType: PathAbsolute, Href: last, Content: label, Raw: raw}
	}
	return Link{PathType: PathRelative, Href: inner, Raw: raw}
}

func isURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

func isImageURL(s string) bool {
	if !isURL(s) {
		return false
	}
	u, _ := url.Parse(s)
	return imageExts[strings.ToLower(path.Ext(u.Path))]
}
