package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/alexanderramin/taskflow/internal/cli/formatter"
	"github.com/alexanderramin/taskflow/internal/migration"
)

// feedbackPrinter writes migration feedback as styled lines. While muted,
// messages are dropped; the submit summary reports them instead.
type feedbackPrinter struct {
	mu    sync.Mutex
	w     io.Writer
	muted bool
}

var _ migration.Feedback = (*feedbackPrinter)(nil)

func newFeedbackPrinter(w io.Writer) *feedbackPrinter {
	return &feedbackPrinter{w: w}
}

func (p *feedbackPrinter) Info(msg string)    { p.print(formatter.Dim("· " + msg)) }
func (p *feedbackPrinter) Success(msg string) { p.print(formatter.StyleGreen.Render("✔ " + msg)) }
func (p *feedbackPrinter) Warn(msg string)    { p.print(formatter.StyleYellow.Render("! " + msg)) }
func (p *feedbackPrinter) Error(msg string)   { p.print(formatter.StyleRed.Render("✖ " + msg)) }

func (p *feedbackPrinter) mute(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = on
}

func (p *feedbackPrinter) print(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.muted {
		return
	}
	fmt.Fprintln(p.w, line)
}
