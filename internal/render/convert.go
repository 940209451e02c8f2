package render

import (
	"fmt"

	"github.com/mithrel/cosense/internal/notation"
)

// ConversionError reports why raw page text could not be turned into
// Markdown.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return "convert page to markdown: " + e.Err.Error()
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Convert parses raw page text and renders it as Markdown.
//
// On failure the returned string is text itself, unchanged, and err is a
// *ConversionError. Callers can always display the string.
func Convert(text string, opts Options) (md string, err error) {
	defer func() {
		if r := recover(); r != nil {
			md, err = text, &ConversionError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	page, err := notation.Parse(text, notation.Options{HasTitle: !opts.Untitled})
	if err != nil {
		return text, &ConversionError{Err: err}
	}
	out, err := Blocks(page, opts)
	if err != nil {
		return text, &ConversionError{Err: err}
	}
	return out, nil
}
