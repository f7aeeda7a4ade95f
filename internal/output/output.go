// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Writer handles CLI output formatting.
type Writer struct {
	out    io.Writer
	err    io.Writer
	color  bool
	quiet  bool
	styles styles
}

type styles struct {
	title       lipgloss.Style
	section     lipgloss.Style
	command     lipgloss.Style
	placeholder lipgloss.Style
	flag        lipgloss.Style
	description lipgloss.Style
	example     lipgloss.Style
	success     lipgloss.Style
	failure     lipgloss.Style
	warning     lipgloss.Style
	dim         lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		section:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		command:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		placeholder: r.NewStyle().Foreground(lipgloss.Color("2")),
		flag:        r.NewStyle().Foreground(lipgloss.Color("3")),
		description: r.NewStyle().Faint(true),
		example:     r.NewStyle().Foreground(lipgloss.Color("6")),
		success:     r.NewStyle().Foreground(lipgloss.Color("2")),
		failure:     r.NewStyle().Foreground(lipgloss.Color("1")),
		warning:     r.NewStyle().Foreground(lipgloss.Color("3")),
		dim:         r.NewStyle().Faint(true),
	}
}

// New creates a new Writer for stdout and stderr. Colors are used when
// stdout is a terminal and NO_COLOR is unset.
func New() *Writer {
	return NewWithWriters(os.Stdout, os.Stderr, isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "")
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:    out,
		err:    err,
		color:  color,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// Quiet reports whether quiet mode is enabled.
func (w *Writer) Quiet() bool {
	return w.quiet
}

// Out returns the stdout writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

func (w *Writer) render(s lipgloss.Style, text string) string {
	if !w.color {
		return text
	}
	return s.Render(text)
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...any) {
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...any) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...any) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...any) {
	w.Println("%s", w.render(w.styles.success, fmt.Sprintf(format, args...)))
}

// Failure prints a failure message to stdout.
func (w *Writer) Failure(format string, args ...any) {
	w.Println("%s", w.render(w.styles.failure, fmt.Sprintf(format, args...)))
}

// Warning prints a warning message to stderr.
func (w *Writer) Warning(format string, args ...any) {
	w.Errorln("%s %s", w.render(w.styles.warning, "warning:"), fmt.Sprintf(format, args...))
}

// ErrorPrefix prints an error message with the automark prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...any) {
	w.Errorln("%s %s", w.render(w.styles.failure, "automark:"), fmt.Sprintf(format, args...))
}

// Section prints a section header (skipped in quiet mode).
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.render(w.styles.section, "=== "+title+" ==="))
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Verdict prints one test case outcome as a check or cross mark.
func (w *Writer) Verdict(pass bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !w.color {
		mark := "x"
		if pass {
			mark = "+"
		}
		w.Println("  %s %s", mark, msg)
		return
	}
	if pass {
		w.Println("  %s %s", w.styles.success.Render("✓"), msg)
	} else {
		w.Println("  %s %s", w.styles.failure.Render("✗"), msg)
	}
}

// Detail prints an indented, dimmed block of text such as program output.
func (w *Writer) Detail(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		w.Println("      %s", w.render(w.styles.dim, line))
	}
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(label, value string) {
	w.Println("  %s %s", w.render(w.styles.dim, label+":"), value)
}

// Hint prints a hint message for the user.
func (w *Writer) Hint(format string, args ...any) {
	w.Println("%s", w.render(w.styles.dim, fmt.Sprintf(format, args...)))
}

// HelpTitle formats the main help title line.
func (w *Writer) HelpTitle(title string) {
	w.Println("%s", w.render(w.styles.title, title))
}

// HelpSection formats a section header (e.g., "Commands:").
func (w *Writer) HelpSection(title string) {
	w.Println("")
	w.Println("%s", w.render(w.styles.section, title))
}

// HelpCommand formats a command with its description.
func (w *Writer) HelpCommand(name, description string, width int) {
	w.helpLine(w.styles.command, name, description, width)
}

// HelpFlag formats a flag with its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	w.helpLine(w.styles.flag, name, description, width)
}

func (w *Writer) helpLine(style lipgloss.Style, name, description string, width int) {
	padding := width - len(name)
	if padding < 0 {
		padding = 0
	}
	if !w.color {
		w.Println("  %s%s  %s", name, strings.Repeat(" ", padding), description)
		return
	}
	w.Println("  %s%s  %s", w.colorPlaceholders(style, name), strings.Repeat(" ", padding), w.styles.description.Render(description))
}

// HelpExample formats an example command with description.
func (w *Writer) HelpExample(command, description string) {
	w.Println("  %s", w.render(w.styles.example, command))
	if description != "" {
		w.Println("      %s", w.render(w.styles.description, description))
	}
}

// HelpUsage formats usage lines.
func (w *Writer) HelpUsage(usage string) {
	if !w.color {
		w.Println("  %s", usage)
		return
	}
	w.Println("  %s", w.colorPlaceholders(lipgloss.NewStyle(), usage))
}

// colorPlaceholders renders text with base, highlighting <placeholder> patterns.
func (w *Writer) colorPlaceholders(base lipgloss.Style, text string) string {
	var result strings.Builder
	for text != "" {
		start := strings.Index(text, "<")
		if start == -1 {
			break
		}
		end := strings.Index(text[start:], ">")
		if end == -1 {
			break
		}
		if start > 0 {
			result.WriteString(base.Render(text[:start]))
		}
		result.WriteString(w.styles.placeholder.Render(text[start : start+end+1]))
		text = text[start+end+1:]
	}
	if text != "" {
		result.WriteString(base.Render(text))
	}
	return result.String()
}

// isTerminal returns true if f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
