package components

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/multiview/internal/tui/styles"
)

// BulkModal collects one stream per line. ctrl+s submits, esc cancels.
type BulkModal struct {
	visible bool
	area    textarea.Model
}

// NewBulkModal creates a new bulk-add modal
func NewBulkModal() BulkModal {
	ta := textarea.New()
	ta.Placeholder = "https://youtu.be/abc | Title\nhttps://www.youtube.com/playlist?list=PL..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetWidth(60)
	ta.SetHeight(10)
	return BulkModal{area: ta}
}

// Show opens the modal with an empty buffer
func (m *BulkModal) Show() {
	m.visible = true
	m.area.Reset()
	m.area.Focus()
}

// Hide dismisses the modal
func (m *BulkModal) Hide() {
	m.visible = false
	m.area.Blur()
}

// IsVisible returns whether the modal is shown
func (m BulkModal) IsVisible() bool {
	return m.visible
}

// Value returns the entered text
func (m BulkModal) Value() string {
	return m.area.Value()
}

// Update handles input events, returns (modal, cmd, submitted)
func (m BulkModal) Update(msg tea.Msg) (BulkModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+s":
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		}
	}
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd, false
}

// View renders the modal
func (m BulkModal) View() string {
	if !m.visible {
		return ""
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Bulk add streams"),
		m.area.View(),
		"",
		styles.DimStyle.Render("one per line: url, url,title or url|title   ctrl+s add · esc cancel"),
	)
	return styles.ModalStyle.Render(content)
}
