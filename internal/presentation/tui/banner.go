package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the lay banner to w using w's color profile.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  _               ", "#818cf8"},
		{" | | __ _ _   _   ", "#a78bfa"},
		{" | |/ _` | | | |  ", "#c084fc"},
		{" | | (_| | |_| |  ", "#e879f9"},
		{" |_|\\__,_|\\__, |  ", "#f472b6"},
		{"          |___/   ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
