package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleSubmit  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B4D8")).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D26A")).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true)
)

// Terminal prints one styled line per notification.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminal writes notifications to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) NotifySubmit(msg string)  { t.write(styleSubmit.Render("⧗ " + msg)) }
func (t *Terminal) NotifySuccess(msg string) { t.write(styleSuccess.Render("✓ " + msg)) }
func (t *Terminal) NotifyError(msg string)   { t.write(styleError.Render("✗ " + msg)) }

func (t *Terminal) write(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, line)
}

// Line renders an event the way Terminal prints it, without the newline.
func Line(e Event) string {
	switch e.Kind {
	case KindSubmit:
		return styleSubmit.Render("⧗ " + e.Message)
	case KindSuccess:
		return styleSuccess.Render("✓ " + e.Message)
	default:
		return styleError.Render("✗ " + e.Message)
	}
}
