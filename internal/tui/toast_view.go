package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/internal/core/styles"
)

// ToastView renders toast notifications.
type ToastView struct {
	controller *ToastController
	width      int
}

func NewToastView(controller *ToastController, width int) *ToastView {
	return &ToastView{controller: controller, width: width}
}

// View renders the toast stack as a single string with toasts stacked
// vertically (oldest at top, newest at bottom).
func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		rendered = append(rendered, v.renderToast(toasts[i]))
	}

	return strings.Join(rendered, "\n")
}

func (v *ToastView) renderToast(n notify.Notification[string]) string {
	icon := lipgloss.NewStyle().
		Foreground(styles.SeverityColor(n.Severity)).
		Render(styles.SeverityIcon(n.Severity))

	content := icon + " " + styles.ToastTitleStyle.Render(n.Title)
	if n.Description != "" {
		content += "\n" + styles.ToastBodyStyle.Render(n.Description)
	}

	style := styles.ToastStyle(n.Severity).Width(v.width)
	if !n.Visible {
		style = style.Faint(true)
	}
	return style.Render(content)
}

// Overlay places the toast stack in the lower-right corner of a width x
// height area below background.
func (v *ToastView) Overlay(background string, width, height int) string {
	toastContent := v.View()
	if toastContent == "" {
		return background
	}
	if width == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, background, toastContent)
	}

	remaining := max(height-lipgloss.Height(background), lipgloss.Height(toastContent))
	placed := lipgloss.Place(width, remaining, lipgloss.Right, lipgloss.Bottom, toastContent)
	return lipgloss.JoinVertical(lipgloss.Left, background, placed)
}
