package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// An empty style detects a light or dark terminal background.
func NewRenderer(style string) (func(string) (string, error), error) {
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}
