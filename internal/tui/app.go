package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/multiview/internal/domain"
	"github.com/mmcdole/multiview/internal/service"
	"github.com/mmcdole/multiview/internal/tui/components"
)

// StreamAPI is the registry surface the TUI drives
type StreamAPI interface {
	GridEntries(ctx context.Context, ids []string) ([]domain.GridTile, error)
	Status(ctx context.Context) (service.Status, error)
	Add(ctx context.Context, rawURL, title string) (*domain.StreamEntry, error)
	Update(ctx context.Context, id, title string) (*domain.StreamEntry, error)
	Remove(ctx context.Context, id string) error
	BulkAdd(ctx context.Context, text string) (service.BulkResult, error)
	Refresh(ctx context.Context) (service.RefreshReport, error)
	RefreshPlaylist(ctx context.Context, id string) (*domain.StreamEntry, error)
	CheckEmbeddable(ctx context.Context, id string) (domain.EmbedStatus, error)
	SetAutoRefresh(ctx context.Context, enabled bool) (service.Status, error)
	ValidateKey(ctx context.Context) (bool, string)
	InvalidateCache()
}

// Launcher opens a watch URL in an external player
type Launcher interface {
	Launch(url string) error
}

// KeySetter replaces the API key for this session
type KeySetter interface {
	SetKey(key string)
}

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateInput
	StateBulk
	StateConfirmDelete
	StateHelp
)

// inputPurpose says what the input modal is collecting
type inputPurpose int

const (
	inputAddURL inputPurpose = iota
	inputAddTitle
	inputRename
	inputAPIKey
)

// Layout
const (
	HeaderHeight = 1
	FooterHeight = 1
)

var gridSizes = []int{1, 4, 9}

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	// Services
	Streams  StreamAPI
	Launcher Launcher
	Keys     KeySetter // optional
	logger   *slog.Logger

	// UI components
	Grid       components.Grid
	InputModal components.InputModal
	BulkModal  components.BulkModal
	Help       help.Model

	// Data
	Status   service.Status
	GridSize int

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	Busy         int // in-flight API actions
	SpinnerFrame int

	purpose    inputPurpose
	pendingURL string
	target     *domain.GridTile // entry for rename/delete
}

// NewModel creates a new application model
func NewModel(streams StreamAPI, launcher Launcher, keys KeySetter, gridSize int, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if gridSize != 1 && gridSize != 9 {
		gridSize = 4
	}
	return Model{
		State:      StateBrowsing,
		Streams:    streams,
		Launcher:   launcher,
		Keys:       keys,
		logger:     logger,
		Grid:       components.NewGrid(gridSize),
		InputModal: components.NewInputModal(),
		BulkModal:  components.NewBulkModal(),
		Help:       help.New(),
		GridSize:   gridSize,
		Busy:       1,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadTilesCmd(m.Streams),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case TilesLoadedMsg:
		m.done()
		m.Grid.SetTiles(msg.Tiles)
		m.Status = msg.Status
		return m, nil

	case StreamAddedMsg:
		m.done()
		return m.withStatus("Added: "+msg.Entry.Title, false, m.reload())

	case StreamRenamedMsg:
		m.done()
		return m.withStatus("Renamed to: "+msg.Entry.Title, false, m.reload())

	case StreamRemovedMsg:
		m.done()
		return m.withStatus("Deleted: "+msg.Title, false, m.reload())

	case BulkAddedMsg:
		m.done()
		text := fmt.Sprintf("Added %d, failed %d", msg.Result.Added, msg.Result.Failed)
		if len(msg.Result.Errors) > 0 {
			text += " (" + msg.Result.Errors[0] + ")"
		}
		return m.withStatus(text, msg.Result.Failed > 0, m.reload())

	case RefreshDoneMsg:
		m.done()
		p := msg.Report.Playlists
		text := fmt.Sprintf("Refreshed %d playlists, %d changed", p.Refreshed, p.Changed)
		if msg.Report.Channels.Added > 0 {
			text += fmt.Sprintf(", %d live videos added", msg.Report.Channels.Added)
		}
		failed := len(p.Failed) + len(msg.Report.Channels.Failed)
		if failed > 0 {
			text += fmt.Sprintf(", %d failed", failed)
		}
		return m.withStatus(text, failed > 0, m.reload())

	case PlaylistRefreshedMsg:
		m.done()
		text := "Refreshed: " + msg.Entry.Title
		if ref := msg.Entry.CachedLatestVideo; ref != nil && ref.IsLive {
			text += " (live)"
		}
		return m.withStatus(text, false, m.reload())

	case EmbedCheckedMsg:
		m.done()
		return m.withStatus(msg.Title+": "+msg.Status.Message, !msg.Status.Embeddable, nil)

	case AutoRefreshChangedMsg:
		m.done()
		m.Status = msg.Status
		state := "off"
		if msg.Status.AutoRefreshEnabled {
			state = "on"
		}
		return m.withStatus("Auto-refresh "+state, false, m.reload())

	case KeyValidatedMsg:
		m.done()
		return m.withStatus(msg.Message, !msg.Valid, m.reload())

	case LaunchedMsg:
		m.done()
		return m.withStatus("Opened: "+msg.Title, false, nil)

	case ErrMsg:
		m.done()
		m.logger.Error("action failed", "context", msg.Context, "error", msg.Err)
		return m.withStatus(msg.Error(), true, nil)

	case StatusMsg:
		return m.withStatus(msg.Message, msg.IsError, nil)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// withStatus sets the status line, schedules its removal and runs next
func (m Model) withStatus(text string, isErr bool, next tea.Cmd) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	delay := 3 * time.Second
	if isErr {
		delay = 5 * time.Second
	}
	return m, tea.Batch(next, ClearStatusCmd(delay))
}

// start marks an API action in flight and returns its command
func (m *Model) start(cmd tea.Cmd) tea.Cmd {
	m.Busy++
	return cmd
}

func (m *Model) done() {
	if m.Busy > 0 {
		m.Busy--
	}
}

func (m *Model) reload() tea.Cmd {
	return m.start(LoadTilesCmd(m.Streams))
}

// updateLayout sizes the grid to the window minus header and footer
func (m *Model) updateLayout() {
	m.Help.Width = m.Width
	m.Grid.SetSize(m.Width, max(1, m.Height-HeaderHeight-FooterHeight))
}

// nextGridSize cycles 1 -> 4 -> 9 -> 1
func nextGridSize(size int) int {
	for i, s := range gridSizes {
		if s == size {
			return gridSizes[(i+1)%len(gridSizes)]
		}
	}
	return gridSizes[0]
}

// openInput shows the input modal for purpose
func (m *Model) openInput(purpose inputPurpose, title, placeholder, value string) {
	m.purpose = purpose
	m.State = StateInput
	m.InputModal.Show(title, placeholder, value)
}

// submitInput acts on the modal value for the current purpose
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.InputModal.Value())
	m.InputModal.Hide()
	m.State = StateBrowsing

	switch m.purpose {
	case inputAddURL:
		if value == "" {
			return m, nil
		}
		if _, _, _, err := domain.Classify(value); err != nil {
			return m.withStatus(err.Error(), true, nil)
		}
		m.pendingURL = value
		hint := "required for videos"
		if pid, ok := domain.ExtractPlaylistID(value); ok && m.Status.APIKeyConfigured {
			hint = "blank uses the title of playlist " + pid
		}
		m.openInput(inputAddTitle, "Title", "stream title", "")
		m.InputModal.SetHint(hint)
		return m, nil

	case inputAddTitle:
		return m, m.start(AddStreamCmd(m.Streams, m.pendingURL, value))

	case inputRename:
		if m.target == nil {
			return m, nil
		}
		return m, m.start(RenameStreamCmd(m.Streams, m.target.Entry.ID, value))

	case inputAPIKey:
		if value == "" || m.Keys == nil {
			return m, nil
		}
		return m, m.start(SetKeyCmd(m.Streams, m.Keys, value))
	}
	return m, nil
}
