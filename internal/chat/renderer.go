package chat

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Wrap limits for tool answers shown in a terminal.
const (
	maxWrapWidth = 100
	minWrapWidth = 40
)

// Renderer turns a tool answer into what is printed.
type Renderer interface {
	Render(in string) (string, error)
}

// PlainTextRenderer prints tool answers unchanged.
type PlainTextRenderer struct{}

// Render returns the input unchanged
func (p *PlainTextRenderer) Render(in string) (string, error) {
	return in, nil
}

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// wrapWidth fits answers to the terminal, clamped to a readable range.
func wrapWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return maxWrapWidth
	}
	return min(max(width-2, minWrapWidth), maxWrapWidth)
}

// answerStyle picks the light or dark glamour theme for the terminal
// background and drops the document margin so answers line up with the
// [Client] status lines.
func answerStyle() ansi.StyleConfig {
	style := styles.LightStyleConfig
	if termenv.HasDarkBackground() {
		style = styles.DarkStyleConfig
	}
	style.Document.BlockPrefix = ""
	style.Document.Margin = nil
	return style
}

// NewRenderer renders tool answers as markdown when tty is true. Otherwise,
// or if glamour cannot be set up, answers are printed as sent.
func NewRenderer(tty bool) Renderer {
	if !tty {
		return &PlainTextRenderer{}
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(answerStyle()),
		glamour.WithWordWrap(wrapWidth()),
		glamour.WithEmoji(),
	)
	if err != nil {
		return &PlainTextRenderer{}
	}
	return renderer
}
