package layout

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMountLocal(t *testing.T) {
	t.Parallel()

	m := NewMount()
	m.SetBounds(22, 2, 50, 20)

	local, ok := m.Local(tea.MouseMsg{X: 30, Y: 5})
	if !ok {
		t.Fatal("point inside region reported outside")
	}
	if local.X != 8 || local.Y != 3 {
		t.Fatalf("local = (%d,%d), want (8,3)", local.X, local.Y)
	}

	if _, ok := m.Local(tea.MouseMsg{X: 10, Y: 5}); ok {
		t.Fatal("point in sidebar reported inside region")
	}
	if _, ok := m.Local(tea.MouseMsg{X: 30, Y: 22}); ok {
		t.Fatal("point below region reported inside")
	}
}

func TestIsClick(t *testing.T) {
	t.Parallel()

	if !IsClick(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}) {
		t.Fatal("left press not a click")
	}
	if IsClick(tea.MouseMsg{Action: tea.MouseActionMotion}) {
		t.Fatal("motion counted as click")
	}
}
