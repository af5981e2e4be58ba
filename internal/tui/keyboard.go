package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg routes key input by application state
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.State {
	case StateInput:
		var cmd tea.Cmd
		var submitted bool
		m.InputModal, cmd, submitted = m.InputModal.Update(msg)
		if submitted {
			return m.submitInput()
		}
		if !m.InputModal.IsVisible() {
			m.State = StateBrowsing
		}
		return m, cmd

	case StateBulk:
		var cmd tea.Cmd
		var submitted bool
		m.BulkModal, cmd, submitted = m.BulkModal.Update(msg)
		if submitted {
			text := m.BulkModal.Value()
			m.BulkModal.Hide()
			m.State = StateBrowsing
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			return m, m.start(BulkAddCmd(m.Streams, text))
		}
		if !m.BulkModal.IsVisible() {
			m.State = StateBrowsing
		}
		return m, cmd

	case StateConfirmDelete:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			if m.target == nil {
				return m, nil
			}
			return m, m.start(RemoveStreamCmd(m.Streams, m.target.Entry.ID, m.target.Entry.Title))
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
			m.target = nil
		}
		return m, nil

	case StateHelp:
		if key.Matches(msg, Keys.Help, Keys.Escape, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil
	}

	// The filter owns the keyboard while typing
	if m.Grid.IsFilterTyping() {
		var cmd tea.Cmd
		m.Grid, cmd = m.Grid.Update(msg)
		return m, cmd
	}

	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected := m.Grid.Selected()

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.Grid.IsFiltering() {
			m.Grid.ClearFilter()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.Grid.StartFilter()
		return m, nil

	case key.Matches(msg, Keys.Open):
		if selected == nil {
			return m, nil
		}
		return m, m.start(LaunchCmd(m.Launcher, *selected))

	case key.Matches(msg, Keys.Add):
		m.openInput(inputAddURL, "Add stream", "YouTube video or playlist URL", "")
		return m, nil

	case key.Matches(msg, Keys.BulkAdd):
		m.State = StateBulk
		m.BulkModal.Show()
		return m, nil

	case key.Matches(msg, Keys.Rename):
		if selected == nil {
			return m, nil
		}
		m.target = selected
		m.openInput(inputRename, "Rename stream", "new title", selected.Entry.Title)
		return m, nil

	case key.Matches(msg, Keys.Delete):
		if selected == nil {
			return m, nil
		}
		m.target = selected
		m.State = StateConfirmDelete
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		if !m.Status.APIKeyConfigured {
			return m.withStatus("Refresh needs a YouTube API key (press K)", true, nil)
		}
		return m, m.start(RefreshCmd(m.Streams))

	case key.Matches(msg, Keys.RefreshOne):
		if selected == nil {
			return m, nil
		}
		if !selected.Entry.IsPlaylist() {
			return m.withStatus(selected.Entry.Title+" is not a playlist", true, nil)
		}
		return m, m.start(RefreshPlaylistCmd(m.Streams, selected.Entry.ID))

	case key.Matches(msg, Keys.Embeddable):
		if selected == nil {
			return m, nil
		}
		return m, m.start(CheckEmbeddableCmd(m.Streams, selected.Entry.ID, selected.Entry.Title))

	case key.Matches(msg, Keys.GridSize):
		m.GridSize = nextGridSize(m.GridSize)
		m.Grid.SetGridSize(m.GridSize)
		return m, nil

	case key.Matches(msg, Keys.AutoRefresh):
		return m, m.start(SetAutoRefreshCmd(m.Streams, !m.Status.AutoRefreshEnabled))

	case key.Matches(msg, Keys.SetKey):
		if m.Keys == nil {
			return m, nil
		}
		m.openInput(inputAPIKey, "YouTube API key", "paste key for this session", "")
		m.InputModal.SetHint("used until exit; run setup to save it")
		return m, nil

	case key.Matches(msg, Keys.Reload):
		return m, m.start(ReloadCmd(m.Streams))
	}

	// Everything else is grid navigation
	var cmd tea.Cmd
	m.Grid, cmd = m.Grid.Update(msg)
	return m, cmd
}
