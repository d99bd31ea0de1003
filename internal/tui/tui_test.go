package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"tsrefactor/internal/entity"
)

func press(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	jKey  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
)

func items() []Item {
	return []Item{{Label: "a.ts:1"}, {Label: "b.ts:4"}, {Label: "c.ts:9"}}
}

func TestPickerMovesAndSelects(t *testing.T) {
	m := press(newPicker("pick", items()), down, jKey, down, up, enter)
	p := m.(pickerModel)
	assert.True(t, p.done)
	assert.Equal(t, 1, p.chosen)
}

func TestPickerCancel(t *testing.T) {
	m := press(newPicker("pick", items()), down, esc)
	assert.Equal(t, -1, m.(pickerModel).chosen)
}

func TestPickerView(t *testing.T) {
	m := press(newPicker("Several entities are named User", items()), down)
	view := m.View()
	assert.Contains(t, view, "Several entities are named User")
	assert.Contains(t, view, "3 candidates")
	assert.Contains(t, view, "▸ ")
	assert.Contains(t, view, "b.ts:4")
}

func TestEntityItem(t *testing.T) {
	item := EntityItem("/proj", &entity.Entity{
		Name: "User", Kind: entity.KindInterface, FilePath: "/proj/models/user.ts", Line: 2, IsExported: true,
	})
	assert.Equal(t, "models/user.ts:2", item.Label)
	assert.Equal(t, "exported interface", item.Detail)
}
