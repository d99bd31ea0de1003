package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tsrefactor/internal/index"
)

type indexingModel struct {
	spinner spinner.Model
	root    string
	idx     *index.Index
	done    bool
	stats   *index.Stats
	err     error
}

func newIndexingModel(idx *index.Index) indexingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return indexingModel{spinner: sp, root: idx.Root(), idx: idx}
}

// indexDoneMsg is sent when the project has loaded.
type indexDoneMsg struct {
	stats *index.Stats
	err   error
}

func runIndex(idx *index.Index) tea.Cmd {
	return func() tea.Msg {
		stats, err := idx.Load()
		return indexDoneMsg{stats: stats, err: err}
	}
}

func (m indexingModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, runIndex(m.idx))
}

func (m indexingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case indexDoneMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = fmt.Errorf("interrupted")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m indexingModel) View() string {
	if m.done {
		if m.err != nil {
			return errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
		}
		return successStyle.Render(fmt.Sprintf("  ✓ Loaded %d files", m.stats.FilesLoaded)) +
			dimStyle.Render(fmt.Sprintf(" in %s", m.stats.Duration.Round(time.Millisecond))) + "\n"
	}
	return fmt.Sprintf("  %s %s\n", m.spinner.View(), dimStyle.Render("Loading "+m.root+"..."))
}

// LoadWithSpinner loads idx while showing a spinner.
func LoadWithSpinner(idx *index.Index, opts Options) (*index.Stats, error) {
	p := tea.NewProgram(newIndexingModel(idx), opts.programOptions()...)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run loader: %w", err)
	}
	m := final.(indexingModel)
	return m.stats, m.err
}
