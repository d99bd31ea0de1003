// Package tui holds the interactive pieces of the CLI: an entity picker for
// ambiguous names and a spinner shown while the project loads.
package tui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tsrefactor/internal/entity"
)

// Item is one choice in the picker.
type Item struct {
	Label  string
	Detail string
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "cancel"),
	),
}

// pickerModel lets the user choose one item. chosen is -1 until Enter and
// stays -1 on cancel.
type pickerModel struct {
	title  string
	items  []Item
	cursor int
	chosen int
	done   bool
	help   help.Model
}

func newPicker(title string, items []Item) pickerModel {
	return pickerModel{title: title, items: items, chosen: -1, help: help.New()}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Select):
			if len(m.items) > 0 {
				m.chosen = m.cursor
			}
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, keys.Quit):
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	s := "\n" + titleStyle.Render("  "+m.title) + "\n"
	s += subtitleStyle.Render(fmt.Sprintf("  %d candidates", len(m.items))) + "\n\n"
	for i, item := range m.items {
		cursor := "  "
		style := listItemStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		s += fmt.Sprintf("  %s%s", cursor, style.Render(item.Label))
		if item.Detail != "" {
			s += "  " + detailStyle.Render(item.Detail)
		}
		s += "\n"
	}
	s += "\n" + helpStyle.Render(m.help.View(keys)) + "\n"
	return s
}

// Options redirect the program's terminal, mainly for tests.
type Options struct {
	Input  io.Reader
	Output io.Writer
}

func (o Options) programOptions() []tea.ProgramOption {
	var opts []tea.ProgramOption
	if o.Input != nil {
		opts = append(opts, tea.WithInput(o.Input))
	}
	if o.Output != nil {
		opts = append(opts, tea.WithOutput(o.Output))
	}
	return opts
}

// Pick shows items and returns the chosen index, or -1 when cancelled.
func Pick(title string, items []Item, opts Options) (int, error) {
	p := tea.NewProgram(newPicker(title, items), opts.programOptions()...)
	final, err := p.Run()
	if err != nil {
		return -1, fmt.Errorf("run picker: %w", err)
	}
	return final.(pickerModel).chosen, nil
}

// PickEntity asks the user to choose among same-named entities. Paths are
// shown relative to root.
func PickEntity(root string, candidates []*entity.Entity, opts Options) (*entity.Entity, error) {
	items := make([]Item, len(candidates))
	for i, e := range candidates {
		items[i] = EntityItem(root, e)
	}
	title := "Select an entity"
	if len(candidates) > 0 {
		title = fmt.Sprintf("Several entities are named %s", candidates[0].Name)
	}
	i, err := Pick(title, items, opts)
	if err != nil || i < 0 {
		return nil, err
	}
	return candidates[i], nil
}

// EntityItem describes an entity for the picker.
func EntityItem(root string, e *entity.Entity) Item {
	path := e.FilePath
	if rel, err := filepath.Rel(root, path); err == nil {
		path = filepath.ToSlash(rel)
	}
	vis := ""
	if e.IsExported {
		vis = "exported "
	}
	return Item{
		Label:  fmt.Sprintf("%s:%d", path, e.Line),
		Detail: vis + e.Kind.String(),
	}
}
