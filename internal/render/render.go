// Package render prints answers and errors to the terminal.
//
// Answers are rendered as markdown with glamour when the output is a
// terminal (or when forced); otherwise they are printed verbatim so the
// output stays pipe-friendly.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects when markdown rendering is used.
type Mode string

// Rendering modes.
const (
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
	ModeNever  Mode = "never"
)

// defaultWidth is the wrap width used when the terminal size is unknown.
const defaultWidth = 80

// ParseMode maps auto, always and never to a Mode. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeAlways:
		return ModeAlways, nil
	case ModeNever:
		return ModeNever, nil
	default:
		return ModeAuto, fmt.Errorf("unknown render mode %q (want auto, always or never)", s)
	}
}

// Renderer writes answers, errors and prompts to one output.
type Renderer struct {
	out    *termenv.Output
	w      io.Writer
	md     *glamour.TermRenderer
	styled bool
}

// New creates a Renderer for w.
func New(w io.Writer, mode Mode) (*Renderer, error) {
	tty, width := terminal(w)

	r := &Renderer{w: w}
	switch mode {
	case ModeAlways:
		r.styled = true
	case ModeNever:
		r.styled = false
	default:
		r.styled = tty
	}

	profile := termenv.Ascii
	if r.styled && tty {
		profile = termenv.NewOutput(w).EnvColorProfile()
	}
	r.out = termenv.NewOutput(w, termenv.WithProfile(profile))

	if r.styled {
		styleOpt := glamour.WithStandardStyle("notty")
		if tty {
			styleOpt = glamour.WithAutoStyle()
		}
		md, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
		if err != nil {
			return nil, fmt.Errorf("creating markdown renderer: %w", err)
		}
		r.md = md
	}
	return r, nil
}

// terminal reports whether w is a terminal and its width.
func terminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok {
		return false, defaultWidth
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return false, defaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return true, defaultWidth
	}
	return true, width
}

// Styled reports whether markdown rendering is active.
func (r *Renderer) Styled() bool {
	return r.styled
}

// Answer prints a generated answer under an "Output:" label.
func (r *Renderer) Answer(text string) error {
	label := r.out.String("Output:").Bold().Foreground(r.out.Color("#22c55e"))
	if r.md == nil {
		_, err := fmt.Fprintf(r.w, "\n%s %s\n", label, strings.TrimSpace(text))
		return err
	}

	body, err := r.md.Render(text)
	if err != nil {
		return fmt.Errorf("rendering answer: %w", err)
	}
	_, err = fmt.Fprintf(r.w, "\n%s\n%s", label, body)
	return err
}

// Error prints a failed run.
func (r *Renderer) Error(err error) {
	label := r.out.String("Error:").Bold().Foreground(r.out.Color("#ef4444"))
	fmt.Fprintf(r.w, "\n%s %v\n", label, err)
}

// Heading returns s styled as a section heading.
func (r *Renderer) Heading(s string) string {
	return r.out.String(s).Bold().String()
}

// Prompt returns s styled as an input prompt.
func (r *Renderer) Prompt(s string) string {
	return r.out.String(s).Foreground(r.out.Color("#818cf8")).String()
}

// Printf writes unstyled text.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}
