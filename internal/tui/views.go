package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/multiview/internal/domain"
	"github.com/mmcdole/multiview/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	base := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.Grid.View(),
		m.renderFooter(),
	)

	switch m.State {
	case StateInput:
		return m.overlay(m.InputModal.View())
	case StateBulk:
		return m.overlay(m.BulkModal.View())
	case StateConfirmDelete:
		return m.overlay(m.renderConfirmDelete())
	case StateHelp:
		return m.overlay(m.renderHelp())
	}
	return base
}

// overlay centers a modal over a blank screen
func (m Model) overlay(modal string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, modal)
}

func (m Model) renderHeader() string {
	cols, rows := domain.GridShape(m.GridSize)
	left := styles.AccentStyle.Bold(true).Render("multiview") +
		styles.DimStyle.Render(fmt.Sprintf("  %d streams · %d playlists · %dx%d",
			m.Status.StreamCount, m.Status.PlaylistCount, cols, rows))

	var flags []string
	if m.Status.APIKeyConfigured {
		flags = append(flags, styles.SuccessStyle.Render("api key"))
	} else {
		flags = append(flags, styles.DimStyle.Render("no api key"))
	}
	if m.Status.AutoRefreshEnabled {
		flags = append(flags, styles.AccentStyle.Render("auto-refresh"))
	}
	if m.Status.LastRefresh != nil {
		flags = append(flags, styles.DimStyle.Render("refreshed "+m.Status.LastRefresh.Local().Format("15:04")))
	}
	right := strings.Join(flags, styles.DimStyle.Render(" · "))

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Truncate(left, m.Width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	default:
		left = m.Help.ShortHelpView(Keys.ShortHelp())
	}
	if m.Busy > 0 {
		frame := styles.SpinnerFrames[m.SpinnerFrame%len(styles.SpinnerFrames)]
		left = styles.AccentStyle.Render(frame) + " " + left
	}
	return styles.Truncate(left, m.Width)
}

func (m Model) renderConfirmDelete() string {
	title := ""
	if m.target != nil {
		title = m.target.Entry.Title
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Delete stream?"),
		styles.SubtitleStyle.Render(title),
		"",
		styles.HelpKeyStyle.Render("y")+styles.HelpDescStyle.Render(" delete  ")+
			styles.HelpKeyStyle.Render("n")+styles.HelpDescStyle.Render(" cancel"),
	)
	return styles.ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	h := m.Help
	h.ShowAll = true
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Keys"),
		h.View(Keys),
	)
	return styles.ModalStyle.Render(content)
}
