// Package tui implements the interactive toast demo.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/internal/core/styles"
)

// Options configures the demo model.
type Options struct {
	ToastWidth int
}

// Model is the root bubbletea model.
type Model struct {
	center          *notify.Center[string]
	toastController *ToastController
	toastView       *ToastView

	keys KeyMap
	help help.Model

	width  int
	height int
}

// New creates a model that renders and drives center.
func New(ctx context.Context, center *notify.Center[string], opts Options) Model {
	ctrl := NewToastController(ctx, center)

	h := help.New()
	h.ShowAll = true

	return Model{
		center:          center,
		toastController: ctrl,
		toastView:       NewToastView(ctrl, opts.ToastWidth),
		keys:            DefaultKeyMap(),
		help:            h,
	}
}

func (m Model) Init() tea.Cmd {
	return m.toastController.Listen()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		m.toastController.Apply(msg.list)
		return m, m.toastController.Listen()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.toastController

	switch {
	case key.Matches(msg, m.keys.Quit):
		ctrl.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Success):
		ctrl.Push(notify.SeveritySuccess)
	case key.Matches(msg, m.keys.Error):
		ctrl.Push(notify.SeverityError)
	case key.Matches(msg, m.keys.Warning):
		ctrl.Push(notify.SeverityWarning)
	case key.Matches(msg, m.keys.Info):
		ctrl.Push(notify.SeverityInfo)
	case key.Matches(msg, m.keys.Update):
		ctrl.UpdateNewest()
	case key.Matches(msg, m.keys.Dismiss):
		ctrl.DismissNewest()
	case key.Matches(msg, m.keys.DismissAll):
		ctrl.DismissAll()
	case key.Matches(msg, m.keys.Clear):
		ctrl.Clear()
	}

	return m, nil
}

func (m Model) View() string {
	visible := 0
	for _, n := range m.toastController.Toasts() {
		if n.Visible {
			visible++
		}
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		styles.HeaderStyle.Render("toastq"),
		styles.MutedStyle.Render(fmt.Sprintf("%d visible, %d total, capacity %d",
			visible, len(m.toastController.Toasts()), m.center.Capacity())),
		styles.ToastHelpStyle.Render(m.help.View(m.keys)),
	)

	return m.toastView.Overlay(header, m.width, m.height)
}
