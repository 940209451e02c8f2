// Package render converts a parsed Cosense page into Markdown.
//
// Blocks and Node are pure: they read the tree and the two substitution
// strings in Options and nothing else, so they are safe for concurrent use.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mithrel/cosense/internal/notation"
)

const (
	// lineBreak joins blocks: a Markdown hard break keeps every block on its
	// own line without merging paragraphs.
	lineBreak = "  \n"
	fence     = "```"
)

var (
	// ErrUnknownBlock means a block type outside the closed set reached the
	// renderer.
	ErrUnknownBlock = errors.New("unknown block type")
	// ErrUnknownPathType means a link carried a path type outside
	// root/relative/absolute.
	ErrUnknownPathType = errors.New("unknown link path type")
)

// Options carries the values internal links are resolved against.
type Options struct {
	BaseURL string
	Project string
	// Untitled makes Convert treat the first line as body text.
	Untitled bool
}

// Blocks renders every block and joins the fragments with a hard line break.
func Blocks(page []notation.Block, opts Options) (string, error) {
	parts := make([]string, 0, len(page))
	for _, b := range page {
		s, err := Block(b, opts)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, lineBreak), nil
}

// Block renders a single block.
func Block(b notation.Block, opts Options) (string, error) {
	switch b := b.(type) {
	case notation.Title:
		return "# " + b.Text, nil
	case notation.CodeBlock:
		return fence + codeLanguage(b.FileName) + "\n" + b.Content + "\n" + fence, nil
	case notation.Table:
		// Tables are not rendered.
		return "", nil
	case notation.Line:
		children, err := Nodes(b.Nodes, opts)
		if err != nil {
			return "", err
		}
		return listPrefix(b.Indent) + children, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownBlock, b)
	}
}

// Nodes renders nodes in order and concatenates the results.
func Nodes(nodes []notation.Node, opts Options) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		s, err := Node(n, opts)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// Node renders one inline node. Kinds without a Markdown form fall back to
// their source text.
func Node(n notation.Node, opts Options) (string, error) {
	switch n := n.(type) {
	case notation.Plain:
		return n.Text, nil
	case notation.Decoration:
		if !isBold(n.Decos) {
			return n.Raw, nil
		}
		children, err := Nodes(n.Nodes, opts)
		if err != nil {
			return "", err
		}
		return "**" + children + "**", nil
	case notation.Quote:
		return Nodes(n.Nodes, opts)
	case notation.Code:
		return "`" + n.Text + "`", nil
	case notation.HashTag:
		return mdLink("#"+n.Href, opts.projectURL(n.Href)), nil
	case notation.Link:
		return link(n, opts)
	default:
		return n.Source(), nil
	}
}

func link(n notation.Link, opts Options) (string, error) {
	switch n.PathType {
	case notation.PathRoot:
		return mdLink(n.Href, opts.BaseURL+n.Href), nil
	case notation.PathRelative:
		return mdLink(n.Href, opts.projectURL(n.Href)), nil
	case notation.PathAbsolute:
		return mdLink(n.Content, n.Href), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPathType, n.PathType)
	}
}

func (o Options) projectURL(href string) string {
	return o.BaseURL + "/" + o.Project + "/" + href
}

func mdLink(label, target string) string {
	return "[" + label + "](" + target + ")"
}

func isBold(decos []string) bool {
	for _, d := range decos {
		if strings.HasPrefix(d, "*") {
			return true
		}
	}
	return false
}

// codeLanguage is the file extension of a code block name, if any.
func codeLanguage(fileName string) string {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 {
		return ""
	}
	return fileName[i+1:]
}

func listPrefix(indent int) string {
	if indent <= 0 {
		return ""
	}
	return strings.Repeat("  ", indent-1) + "* "
}
