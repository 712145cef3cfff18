package chat

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// SearchFrames are shown in turn while a search is in flight.
var SearchFrames = spinner.Spinner{
	Frames: []string{
		"🔍 Searching the multiverse...",
		"📚 Consulting the card archives...",
		"🃏 Shuffling through the library...",
		"✨ Summoning the results...",
		"🧙 Asking the planeswalkers...",
	},
	FPS: time.Second,
}

var statusStyle = lipgloss.NewStyle().Faint(true)

const eraseLine = "\r" + termenv.CSI + termenv.EraseEntireLineSeq

// Progress repaints a single status line while a call is in flight.
type Progress struct {
	w      io.Writer
	frames spinner.Spinner
}

// NewProgress returns a Progress painting frames onto w.
func NewProgress(w io.Writer, frames spinner.Spinner) *Progress {
	if frames.FPS <= 0 {
		frames.FPS = time.Second
	}
	return &Progress{w: w, frames: frames}
}

// Start paints the first frame and advances one frame per interval until the
// returned stop function is called. stop erases the status line and returns
// only after the painting goroutine has exited.
func (p *Progress) Start(ctx context.Context) (stop func()) {
	if p == nil || len(p.frames.Frames) == 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(p.frames.FPS)
		defer ticker.Stop()

		frame := 0
		p.paint(frame)
		for {
			select {
			case <-ctx.Done():
				fmt.Fprint(p.w, eraseLine)
				return
			case <-ticker.C:
				frame++
				p.paint(frame)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (p *Progress) paint(frame int) {
	text := p.frames.Frames[frame%len(p.frames.Frames)]
	fmt.Fprint(p.w, eraseLine+statusStyle.Render(text))
}
