package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/pdjsoneditor/jsongraph/pkg/layout"
)

const progressBarWidth = 30

var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorFaint)
)

// =============================================================================
// LayoutProgressModel - live view of a layout pass
// =============================================================================

type progressMsg layout.Progress

type doneMsg struct{ err error }

// LayoutProgressModel is the bubbletea model showing the phase and progress
// of a running layout pass.
type LayoutProgressModel struct {
	Title     string
	Phase     layout.Phase
	Value     float64
	Err       error
	Done      bool
	Cancelled bool
}

// NewLayoutProgressModel creates a progress model.
func NewLayoutProgressModel(title string) LayoutProgressModel {
	return LayoutProgressModel{Title: title, Phase: layout.PhaseBuild}
}

func (m LayoutProgressModel) Init() tea.Cmd {
	return nil
}

func (m LayoutProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Cancelled = true
			return m, tea.Quit
		}
	case progressMsg:
		// Progress only moves forward within a phase.
		if msg.Phase != m.Phase || msg.Value >= m.Value {
			m.Phase, m.Value = msg.Phase, msg.Value
		}
	case doneMsg:
		m.Done, m.Err = true, msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m LayoutProgressModel) View() string {
	if m.Done {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(progressBar(m.Value, progressBarWidth))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%-6s %3.0f%%", m.Phase, m.Value*100)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q cancel"))
	b.WriteString("\n")
	return b.String()
}

// progressBar draws v in [0, 1] as a bar of width cells.
func progressBar(v float64, width int) string {
	v = min(max(v, 0), 1)
	full := int(v*float64(width) + 0.5)
	return barFullStyle.Render(strings.Repeat("█", full)) +
		barEmptyStyle.Render(strings.Repeat("░", width-full))
}

// =============================================================================
// Runner
// =============================================================================

// interactive reports whether w is a terminal.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// runWithProgress runs fn and shows its progress. On a terminal it draws the
// bubbletea view on stderr; elsewhere progress goes to the debug log.
// Quitting the view cancels fn.
func runWithProgress(ctx context.Context, title string, fn func(context.Context, layout.ProgressFunc) error) error {
	logger := loggerFromContext(ctx)
	if !interactive(os.Stderr) {
		return fn(ctx, func(p layout.Progress) {
			logger.Debug("progress", "phase", p.Phase, "value", p.Value)
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewLayoutProgressModel(title),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr))

	result := make(chan error, 1)
	go func() {
		err := fn(ctx, func(pr layout.Progress) { p.Send(progressMsg(pr)) })
		result <- err
		p.Send(doneMsg{err: err})
	}()

	final, runErr := p.Run()
	if m, ok := final.(LayoutProgressModel); ok && m.Cancelled {
		cancel()
	}
	err := <-result
	if err == nil && runErr != nil && ctx.Err() == nil {
		logger.Debug("progress view failed", "error", runErr)
	}
	return err
}
