// Package notation models a Cosense page as a tree of blocks and inline
// nodes and parses raw page text into that tree.
package notation

// Block is a top-level page element. The set of implementations is closed:
// Title, CodeBlock, Table and Line.
type Block interface {
	block()
}

// Title is the first line of a page.
type Title struct {
	Text string
}

// CodeBlock is a "code:<file name>" block with its indented body.
type CodeBlock struct {
	FileName string
	Content  string
}

// Table is a "table:<name>" block. Rows are split on tabs.
type Table struct {
	FileName string
	Cells    [][]string
}

// Line is a regular line. Indent is the number of leading whitespace
// characters and drives list nesting.
type Line struct {
	Indent int
	Nodes  []Node
}

func (Title) block()     {}
func (CodeBlock) block() {}
func (Table) block()     {}
func (Line) block()      {}

// Node is an inline element. Every node keeps the source text it was parsed
// from so unhandled kinds can be passed through unchanged.
type Node interface {
	Source() string
}

// PathType classifies how a Link addresses its target.
type PathType string

const (
	PathRoot     PathType = "root"
	PathRelative PathType = "relative"
	PathAbsolute PathType = "absolute"
)

type Plain struct {
	Text string
}

// Decoration is "[<decos> text]". Decos holds one entry per decoration
// character kind; runs of '*' are recorded as "*-<n>".
type Decoration struct {
	Decos []string
	Nodes []Node
	Raw   string
}

// Quote is a line body starting with '>'.
type Quote struct {
	Nodes []Node
	Raw   string
}

// Code is inline code between backticks.
type Code struct {
	Text string
	Raw  string
}

// HashTag is "#href".
type HashTag struct {
	Href string
	Raw  string
}

// Link is a bracket link or a bare URL. Content is the label of an
// absolute link and is empty otherwise.
type Link struct {
	PathType PathType
	Href     string
	Content  string
	Raw      string
}

// Strong is "[[text]]".
type Strong struct {
	Nodes []Node
	Raw   string
}

// Icon is "[name.icon]" or "[[name.icon]]".
type Icon struct {
	Path   string
	Strong bool
	Raw    string
}

// Image is a bracketed image URL, optionally strong.
type Image struct {
	Src    string
	Link   string
	Strong bool
	Raw    string
}

// Formula is "[$ expr]".
type Formula struct {
	Formula string
	Raw     string
}

// Blank is a bracket pair holding only whitespace.
type Blank struct {
	Text string
	Raw  string
}

// Helpfeel is a line body starting with "? ".
type Helpfeel struct {
	Text string
	Raw  string
}

// CommandLine is a line body starting with "$ " or "% ".
type CommandLine struct {
	Symbol string
	Text   string
	Raw    string
}

func (n Plain) Source() string       { return n.Text }
func (n Decoration) Source() string  { return n.Raw }
func (n Quote) Source() string       { return n.Raw }
func (n Code) Source() string        { return n.Raw }
func (n HashTag) Source() string     { return n.Raw }
func (n Link) Source() string        { return n.Raw }
func (n Strong) Source() string      { return n.Raw }
func (n Icon) Source() string        { return n.Raw }
func (n Image) Source() string       { return n.Raw }
func (n Formula) Source() string     { return n.Raw }
func (n Blank) Source() string       { return n.Raw }
func (n Helpfeel) Source() string    { return n.Raw }
func (n CommandLine) Source() string { return n.Raw }
