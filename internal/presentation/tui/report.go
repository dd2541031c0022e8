package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/lay"
)

// Report formats a run result as markdown.
func Report(res lay.Result) string {
	var b strings.Builder

	title := res.Program
	if title == "" {
		title = "program"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if res.Session != "" {
		fmt.Fprintf(&b, "Session `%s`\n\n", res.Session)
	}

	if len(res.Ops) > 0 {
		b.WriteString("## Operations\n\n```\n")
		for _, op := range res.Ops {
			b.WriteString(op)
			b.WriteByte('\n')
		}
		b.WriteString("```\n\n")
	}

	if res.Error != "" {
		fmt.Fprintf(&b, "**Failed:** %s\n\n", res.Error)
	}

	if res.Bits != "" {
		b.WriteString("## Results\n\n| slot | value |\n|---:|:---:|\n")
		for i, c := range res.Bits {
			fmt.Fprintf(&b, "| %d | %c |\n", i, c)
		}
		fmt.Fprintf(&b, "\nBits: `%s`\n", res.Bits)
	}
	return b.String()
}

// RenderReport formats res and renders it for the terminal with style.
func RenderReport(res lay.Result, style string) (string, error) {
	render, err := NewRenderer(style)
	if err != nil {
		return "", err
	}
	return render(Report(res))
}
