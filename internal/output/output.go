// Package output provides consistent CLI output formatting: status lines,
// document tables, and scored search results, with color when writing to a
// terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette, ANSI 256.
const (
	colorCyan   = "86"  // accents, scores
	colorWhite  = "255" // titles
	colorGray   = "245" // secondary text
	colorRed    = "196" // errors
	colorYellow = "220" // warnings
	colorGreen  = "78"  // success
)

// Styles holds the render styles for one Writer.
type Styles struct {
	Title   lipgloss.Style
	Score   lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Header  lipgloss.Style
}

func colorStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorWhite)),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorCyan)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorCyan)),
	}
}

func plainStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle(),
		Score:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Header:  lipgloss.NewStyle(),
	}
}

// Writer provides formatted output for the CLI.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer. Color is enabled only when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer) *Writer {
	useColor := false
	if f, ok := out.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return NewWithColor(out, useColor)
}

// NewWithColor creates a Writer with explicit color control.
func NewWithColor(out io.Writer, useColor bool) *Writer {
	styles := plainStyles()
	if useColor {
		styles = colorStyles()
	}
	return &Writer{out: out, styles: styles}
}

// Printf writes formatted text. Write errors on console output are ignored.
func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}

// Println writes a line.
func (w *Writer) Println(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}

// Success prints a success line.
func (w *Writer) Success(format string, args ...any) {
	_, _ = fmt.Fprintln(w.out, w.styles.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning line.
func (w *Writer) Warning(format string, args ...any) {
	_, _ = fmt.Fprintln(w.out, w.styles.Warning.Render("! "+fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (w *Writer) Error(format string, args ...any) {
	_, _ = fmt.Fprintln(w.out, w.styles.Error.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Header prints a section header.
func (w *Writer) Header(text string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(text))
}

// KeyValue prints an aligned "key: value" line.
func (w *Writer) KeyValue(key, value string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.styles.Dim.Render(fmt.Sprintf("%-18s", key+":")), value)
}

// DocumentRow is one row of the list table.
type DocumentRow struct {
	DocID      string
	Title      string
	SourcePath string
	FileType   string
	DateAdded  string
	Chunks     int
}

// DocumentTable prints indexed documents in aligned columns.
func (w *Writer) DocumentTable(rows []DocumentRow) {
	if len(rows) == 0 {
		w.Println("No documents indexed.")
		return
	}

	titleWidth := len("TITLE")
	for _, r := range rows {
		if l := len(r.Title); l > titleWidth {
			titleWidth = l
		}
	}
	if titleWidth > 40 {
		titleWidth = 40
	}

	header := fmt.Sprintf("%-14s %-*s %-6s %-8s %s", "DOC ID", titleWidth, "TITLE", "TYPE", "CHUNKS", "SOURCE")
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(header))

	for _, r := range rows {
		title := r.Title
		if len(title) > titleWidth {
			title = title[:titleWidth-1] + "…"
		}
		_, _ = fmt.Fprintf(w.out, "%-14s %-*s %-6s %-8d %s\n",
			r.DocID, titleWidth, title, r.FileType, r.Chunks,
			w.styles.Dim.Render(r.SourcePath))
	}
}

// SearchHit is one rendered search result.
type SearchHit struct {
	Score      float32
	Title      string
	DocID      string
	ChunkIndex int
	ChunkText  string
}

// SearchResults prints scored hits with a snippet of each chunk.
func (w *Writer) SearchResults(hits []SearchHit) {
	if len(hits) == 0 {
		w.Println("No results found.")
		return
	}

	for i, h := range hits {
		score := w.styles.Score.Render(fmt.Sprintf("[%.3f]", h.Score))
		title := w.styles.Title.Render(h.Title)
		meta := w.styles.Dim.Render(fmt.Sprintf("(%s, chunk %d)", h.DocID, h.ChunkIndex))
		_, _ = fmt.Fprintf(w.out, "%d. %s %s %s\n", i+1, score, title, meta)

		for _, line := range strings.Split(snippet(h.ChunkText, 300), "\n") {
			_, _ = fmt.Fprintf(w.out, "   %s\n", line)
		}
		_, _ = fmt.Fprintln(w.out)
	}
}

// snippet truncates text to max runes on a word boundary.
func snippet(text string, max int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx > max/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
