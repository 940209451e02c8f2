package export

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/mithrel/cosense/pkg/api"
)

var (
	codeSpan = regexp.MustCompile("`([^`]+)`")
	mdLink   = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

// PDF lays out the converted Markdown of p on A4 pages. Core fonts only
// cover cp1252; other characters are replaced.
func PDF(p api.RenderedPage) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr("Source: "+p.URL), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	inCode := false
	for _, line := range strings.Split(p.Markdown, "\n") {
		if strings.HasPrefix(line, "```") {
			inCode = !inCode
			pdf.Ln(2)
			continue
		}
		if inCode {
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, tr(line), "", "L", true)
			continue
		}
		line = strings.TrimSuffix(line, "  ")
		if strings.TrimSpace(line) == "" {
			pdf.Ln(3)
			continue
		}
		if strings.HasPrefix(line, "# ") {
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 18)
			pdf.MultiCell(0, 9, tr(cleanInline(line[2:])), "", "L", false)
			pdf.Ln(2)
			continue
		}
		if trimmed := strings.TrimLeft(line, " "); strings.HasPrefix(trimmed, "* ") {
			depth := (len(line) - len(trimmed)) / 2
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetX(pdf.GetX() + float64(depth)*5)
			pdf.MultiCell(0, 5, tr("- "+cleanInline(trimmed[2:])), "", "L", false)
			continue
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(cleanInline(line)), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cleanInline strips the inline Markdown the converter emits.
func cleanInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = codeSpan.ReplaceAllString(s, "$1")
	s = mdLink.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
