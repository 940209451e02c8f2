package notation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned for page text that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("page text is not valid UTF-8")

// Options tunes Parse.
type Options struct {
	// HasTitle makes the first line a Title block, as on a real page.
	HasTitle bool
}

const (
	codePrefix  = "code:"
	tablePrefix = "table:"
)

// Parse splits text into blocks. It never mutates or retains text.
func Parse(text string, opts Options) ([]Block, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidEncoding
	}
	if text == "" {
		return nil, nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	blocks := make([]Block, 0, len(lines))
	i := 0
	if opts.HasTitle {
		blocks = append(blocks, Title{Text: strings.TrimSpace(lines[0])})
		i = 1
	}
	for i < len(lines) {
		indent, body := splitIndent(lines[i])
		switch {
		case strings.HasPrefix(body, codePrefix) && len(body) > len(codePrefix):
			inner, next := collectIndented(lines, i+1, indent)
			blocks = append(blocks, CodeBlock{
				FileName: body[len(codePrefix):],
				Content:  strings.Join(inner, "\n"),
			})
			i = next
		case strings.HasPrefix(body, tablePrefix) && len(body) > len(tablePrefix):
			rows, next := collectIndented(lines, i+1, indent)
			cells := make([][]string, 0, len(rows))
			for _, r := range rows {
				cells = append(cells, strings.Split(r, "\t"))
			}
			blocks = append(blocks, Table{FileName: body[len(tablePrefix):], Cells: cells})
			i = next
		default:
			blocks = append(blocks, Line{Indent: indent, Nodes: parseLine(body)})
			i++
		}
	}
	return blocks, nil
}

func isIndentRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '　'
}

// splitIndent returns the number of leading whitespace characters and the
// remainder of the line.
func splitIndent(line string) (int, string) {
	n := 0
	for off, r := range line {
		if !isIndentRune(r) {
			return n, line[off:]
		}
		n++
	}
	return n, ""
}

// collectIndented gathers the lines after an opener that are indented deeper
// than it, stripping indent+1 leading characters from each.
func collectIndented(lines []string, start, indent int) ([]string, int) {
	var out []string
	j := start
	for ; j < len(lines); j++ {
		n, _ := splitIndent(lines[j])
		if n <= indent {
			break
		}
		out = append(out, dropRunes(lines[j], indent+1))
	}
	return out, j
}

func dropRunes(s string, n int) string {
	for i := 0; i < n && s != ""; i++ {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	return s
}

func parseLine(body string) []Node {
	switch {
	case strings.HasPrefix(body, ">"):
		return []Node{Quote{Nodes: parseInline(body[1:]), Raw: body}}
	case strings.HasPrefix(body, "? "):
		return []Node{Helpfeel{Text: body[2:], Raw: body}}
	case strings.HasPrefix(body, "$ "), strings.HasPrefix(body, "% "):
		return []Node{CommandLine{Symbol: body[:1], Text: body[2:], Raw: body}}
	}
	return parseInline(body)
}
