package tui

import (
	"time"

	"github.com/mmcdole/multiview/internal/domain"
	"github.com/mmcdole/multiview/internal/service"
)

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StatusMsg shows a transient status line
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status line
type ClearStatusMsg struct{}

// TickMsg drives the spinner
type TickMsg time.Time

// TilesLoadedMsg carries a fresh read of the registry
type TilesLoadedMsg struct {
	Tiles  []domain.GridTile
	Status service.Status
}

// StreamAddedMsg signals a successful add
type StreamAddedMsg struct {
	Entry *domain.StreamEntry
}

// StreamRenamedMsg signals a successful rename
type StreamRenamedMsg struct {
	Entry *domain.StreamEntry
}

// StreamRemovedMsg signals a successful delete
type StreamRemovedMsg struct {
	ID    string
	Title string
}

// BulkAddedMsg carries a bulk-add outcome
type BulkAddedMsg struct {
	Result service.BulkResult
}

// RefreshDoneMsg carries a full refresh outcome
type RefreshDoneMsg struct {
	Report service.RefreshReport
}

// PlaylistRefreshedMsg signals one playlist was re-resolved
type PlaylistRefreshedMsg struct {
	Entry *domain.StreamEntry
}

// EmbedCheckedMsg carries an oEmbed answer
type EmbedCheckedMsg struct {
	Title  string
	Status domain.EmbedStatus
}

// AutoRefreshChangedMsg signals the auto-refresh flag was saved
type AutoRefreshChangedMsg struct {
	Status service.Status
}

// KeyValidatedMsg carries the result of a runtime key change
type KeyValidatedMsg struct {
	Valid   bool
	Message string
}

// LaunchedMsg signals the player was started
type LaunchedMsg struct {
	Title string
}
