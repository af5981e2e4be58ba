package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/multiview/internal/domain"
)

// Command factories for async operations

// apiTimeout bounds actions that page through the Data API
const apiTimeout = 2 * time.Minute

// LoadTilesCmd reads the registry and status. Stale playlists are re-resolved
// when auto-refresh is on.
func LoadTilesCmd(svc StreamAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		tiles, err := svc.GridEntries(ctx, nil)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading streams"}
		}
		st, err := svc.Status(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading status"}
		}
		return TilesLoadedMsg{Tiles: tiles, Status: st}
	}
}

// ReloadCmd drops the response cache and reads the registry again
func ReloadCmd(svc StreamAPI) tea.Cmd {
	return func() tea.Msg {
		svc.InvalidateCache()
		return LoadTilesCmd(svc)()
	}
}

// AddStreamCmd registers a URL
func AddStreamCmd(svc StreamAPI, rawURL, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		entry, err := svc.Add(ctx, rawURL, title)
		if err != nil {
			return ErrMsg{Err: err, Context: "adding stream"}
		}
		return StreamAddedMsg{Entry: entry}
	}
}

// RenameStreamCmd changes an entry title
func RenameStreamCmd(svc StreamAPI, id, title string) tea.Cmd {
	return func() tea.Msg {
		entry, err := svc.Update(context.Background(), id, title)
		if err != nil {
			return ErrMsg{Err: err, Context: "renaming stream"}
		}
		return StreamRenamedMsg{Entry: entry}
	}
}

// RemoveStreamCmd deletes an entry
func RemoveStreamCmd(svc StreamAPI, id, title string) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Remove(context.Background(), id); err != nil {
			return ErrMsg{Err: err, Context: "deleting stream"}
		}
		return StreamRemovedMsg{ID: id, Title: title}
	}
}

// BulkAddCmd adds one stream per line
func BulkAddCmd(svc StreamAPI, text string) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.BulkAdd(context.Background(), text)
		if err != nil {
			return ErrMsg{Err: err, Context: "bulk add"}
		}
		return BulkAddedMsg{Result: res}
	}
}

// RefreshCmd searches channels and re-resolves every playlist
func RefreshCmd(svc StreamAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		report, err := svc.Refresh(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "refresh"}
		}
		return RefreshDoneMsg{Report: report}
	}
}

// RefreshPlaylistCmd re-resolves one playlist
func RefreshPlaylistCmd(svc StreamAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		entry, err := svc.RefreshPlaylist(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "refreshing playlist"}
		}
		return PlaylistRefreshedMsg{Entry: entry}
	}
}

// CheckEmbeddableCmd asks oEmbed about the entry's current video
func CheckEmbeddableCmd(svc StreamAPI, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		st, err := svc.CheckEmbeddable(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "embed check"}
		}
		return EmbedCheckedMsg{Title: title, Status: st}
	}
}

// SetAutoRefreshCmd persists the auto-refresh flag
func SetAutoRefreshCmd(svc StreamAPI, enabled bool) tea.Cmd {
	return func() tea.Msg {
		st, err := svc.SetAutoRefresh(context.Background(), enabled)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving settings"}
		}
		return AutoRefreshChangedMsg{Status: st}
	}
}

// SetKeyCmd installs a runtime key and validates it
func SetKeyCmd(svc StreamAPI, keys KeySetter, apiKey string) tea.Cmd {
	return func() tea.Msg {
		keys.SetKey(apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		valid, msg := svc.ValidateKey(ctx)
		return KeyValidatedMsg{Valid: valid, Message: msg}
	}
}

// LaunchCmd opens a watch URL in the external player
func LaunchCmd(launcher Launcher, tile domain.GridTile) tea.Cmd {
	return func() tea.Msg {
		if tile.WatchURL == "" {
			return ErrMsg{Err: domain.ErrNoVideos, Context: "open " + tile.Entry.Title}
		}
		if err := launcher.Launch(tile.WatchURL); err != nil {
			return ErrMsg{Err: err, Context: "launching player"}
		}
		return LaunchedMsg{Title: tile.Entry.Title}
	}
}

// ClearStatusCmd clears the status line after a delay
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// TickCmd advances the spinner
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
