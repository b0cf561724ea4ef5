package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/dshills/crucible/internal/report"
)

// TerminalWriter renders the markdown report with ANSI styling.
type TerminalWriter struct {
	// Width wraps rendered text; 0 means 80 columns.
	Width int
	// Style is a glamour style name ("dark", "light", "notty"); empty picks one
	// from the terminal background.
	Style string
}

func (t *TerminalWriter) Write(w io.Writer, r *report.Report) error {
	out, err := RenderMarkdown(Markdown(r), t.Style, t.Width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// RenderMarkdown styles a markdown document for terminal display.
func RenderMarkdown(md, style string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
