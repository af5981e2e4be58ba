package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/multiview/internal/domain"
	"github.com/mmcdole/multiview/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Layout constants for the tile grid
const (
	// Border adds 1 cell on each side of a tile
	BorderWidth  = 2
	BorderHeight = 2

	// Padding(0,1) inside each tile
	HorizontalPadding = 2

	// Page indicator line under the tiles
	FooterLines = 1
)

// Grid lays stream tiles out in pages of cols x rows
type Grid struct {
	tiles []domain.GridTile

	cols, rows int

	// cursor indexes the (filtered) tile list
	cursor int

	width  int
	height int

	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into tiles
}

// NewGrid creates a grid of the given size (1, 4 or 9)
func NewGrid(size int) Grid {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	g := Grid{filterInput: ti}
	g.SetGridSize(size)
	return g
}

// SetTiles replaces the tiles, keeping the cursor on the same entry when it
// still exists
func (g *Grid) SetTiles(tiles []domain.GridTile) {
	selected := ""
	if t := g.Selected(); t != nil {
		selected = t.Entry.ID
	}

	g.tiles = tiles
	if g.filterActive {
		g.applyFilter()
	}

	g.cursor = 0
	for i := 0; i < g.itemCount(); i++ {
		if g.tiles[g.mapIndex(i)].Entry.ID == selected {
			g.cursor = i
			break
		}
	}
}

// SetGridSize changes the tiles per page
func (g *Grid) SetGridSize(size int) {
	g.cols, g.rows = domain.GridShape(size)
}

// PageSize returns the number of tiles per page
func (g Grid) PageSize() int {
	return g.cols * g.rows
}

// SetSize updates the component dimensions
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
}

// Selected returns the tile under the cursor
func (g Grid) Selected() *domain.GridTile {
	if g.cursor >= g.itemCount() {
		return nil
	}
	t := g.tiles[g.mapIndex(g.cursor)]
	return &t
}

// Cursor returns the cursor position in the visible list
func (g Grid) Cursor() int {
	return g.cursor
}

// Page returns the zero-based page holding the cursor
func (g Grid) Page() int {
	return g.cursor / g.PageSize()
}

// PageCount returns the number of pages, at least one
func (g Grid) PageCount() int {
	n := g.itemCount()
	if n == 0 {
		return 1
	}
	return (n + g.PageSize() - 1) / g.PageSize()
}

// VisibleIDs returns the entry IDs on the current page in display order
func (g Grid) VisibleIDs() []string {
	start := g.Page() * g.PageSize()
	end := min(start+g.PageSize(), g.itemCount())
	ids := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		ids = append(ids, g.tiles[g.mapIndex(i)].Entry.ID)
	}
	return ids
}

// IsEmpty returns true if no tiles are visible
func (g Grid) IsEmpty() bool {
	return g.itemCount() == 0
}

// StartFilter activates the filter input
func (g *Grid) StartFilter() {
	g.filterActive = true
	g.filterInput.Focus()
}

// IsFiltering returns true if filter mode is active
func (g Grid) IsFiltering() bool {
	return g.filterActive
}

// IsFilterTyping returns true while the filter input has focus
func (g Grid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all tiles
func (g *Grid) ClearFilter() {
	g.filterActive = false
	g.filterQuery = ""
	g.filteredIdx = nil
	g.filterInput.SetValue("")
	g.filterInput.Blur()
}

// applyFilter fuzzy-matches the query against titles and device names
func (g *Grid) applyFilter() {
	query := g.filterInput.Value()
	g.filterQuery = query

	if query == "" {
		g.filteredIdx = nil
		return
	}

	haystack := make([]string, len(g.tiles))
	for i, t := range g.tiles {
		haystack[i] = strings.ToLower(t.Entry.Title + " " + t.DeviceName)
	}

	matches := fuzzy.Find(strings.ToLower(query), haystack)

	g.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		g.filteredIdx[i] = match.Index
	}
	g.cursor = 0
}

func (g Grid) itemCount() int {
	if g.filteredIdx != nil {
		return len(g.filteredIdx)
	}
	return len(g.tiles)
}

func (g Grid) mapIndex(i int) int {
	if g.filteredIdx != nil && i < len(g.filteredIdx) {
		return g.filteredIdx[i]
	}
	return i
}

// Update handles filter typing and cursor movement
func (g Grid) Update(msg tea.Msg) (Grid, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	if g.IsFilterTyping() {
		if isKey {
			switch keyMsg.String() {
			case "esc":
				g.ClearFilter()
				return g, nil
			case "enter":
				// keep results, hand keys back to navigation
				g.filterInput.Blur()
				return g, nil
			case "backspace":
				if g.filterInput.Value() == "" {
					g.ClearFilter()
					return g, nil
				}
			}
		}
		var cmd tea.Cmd
		g.filterInput, cmd = g.filterInput.Update(msg)
		g.applyFilter()
		return g, cmd
	}

	if !isKey {
		return g, nil
	}

	count := g.itemCount()
	if count == 0 {
		return g, nil
	}

	switch keyMsg.String() {
	case "l", "right":
		g.move(1, count)
	case "h", "left":
		g.move(-1, count)
	case "j", "down":
		g.move(g.cols, count)
	case "k", "up":
		g.move(-g.cols, count)
	case "pgdown", "]":
		g.move(g.PageSize(), count)
	case "pgup", "[":
		g.move(-g.PageSize(), count)
	case "g", "home":
		g.cursor = 0
	case "G", "end":
		g.cursor = count - 1
	}
	return g, nil
}

func (g *Grid) move(delta, count int) {
	g.cursor = max(0, min(count-1, g.cursor+delta))
}

// View renders the current page
func (g Grid) View() string {
	if g.width <= 0 || g.height <= 0 {
		return ""
	}

	footerLines := FooterLines
	if g.filterActive {
		footerLines++
	}

	tileW := g.width/g.cols - BorderWidth - HorizontalPadding
	tileH := (g.height-footerLines)/g.rows - BorderHeight
	if tileW < 4 {
		tileW = 4
	}
	if tileH < 1 {
		tileH = 1
	}

	var body string
	if g.itemCount() == 0 {
		msg := "No streams yet. Press a to add one."
		if g.filterActive && g.filterQuery != "" {
			msg = "No matches"
		}
		body = lipgloss.Place(g.width, g.height-footerLines, lipgloss.Center, lipgloss.Center, styles.DimStyle.Render(msg))
	} else {
		start := g.Page() * g.PageSize()
		rows := make([]string, 0, g.rows)
		for r := 0; r < g.rows; r++ {
			cells := make([]string, 0, g.cols)
			for c := 0; c < g.cols; c++ {
				i := start + r*g.cols + c
				cells = append(cells, g.renderTile(i, tileW, tileH))
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	footer := styles.DimStyle.Render(fmt.Sprintf("page %d/%d · %d streams", g.Page()+1, g.PageCount(), g.itemCount()))
	if g.filterActive {
		footer = g.renderFilterBar() + "\n" + footer
	}
	return body + "\n" + footer
}

// renderTile draws slot i, or an empty slot past the end of the list
func (g Grid) renderTile(i, w, h int) string {
	if i >= g.itemCount() {
		return styles.TileEmptyStyle.Width(w + HorizontalPadding).Height(h).Render("Empty Slot")
	}

	t := g.tiles[g.mapIndex(i)]
	style := styles.TileStyle
	if i == g.cursor {
		style = styles.TileSelectedStyle
	}

	title := styles.TitleStyle.Render(styles.Truncate(t.Entry.Title, w))

	var badge string
	switch {
	case t.IsLive:
		badge = styles.LiveBadgeStyle.Render("LIVE")
	case t.Entry.IsPlaylist() && t.VideoID == "":
		badge = styles.DimBadgeStyle.Render("unresolved")
	case t.Entry.IsPlaylist():
		badge = styles.DimBadgeStyle.Render("latest")
	default:
		badge = styles.DimBadgeStyle.Render("video")
	}

	lines := []string{title, badge}
	if t.DeviceName != "" {
		lines = append(lines, styles.AccentStyle.Render(styles.Truncate(t.DeviceName, w)))
	}
	if ref := t.Entry.CachedLatestVideo; ref != nil && ref.Title != "" && ref.Title != t.Entry.Title {
		lines = append(lines, styles.SubtitleStyle.Render(styles.Truncate(ref.Title, w)))
	}
	if t.VideoID != "" {
		lines = append(lines, styles.DimStyle.Render(styles.Truncate(t.VideoID, w)))
	}
	if len(lines) > h {
		lines = lines[:h]
	}

	return style.Width(w + HorizontalPadding).Height(h).Render(strings.Join(lines, "\n"))
}

func (g Grid) renderFilterBar() string {
	input := g.filterInput.View()
	if g.filterQuery == "" {
		return input
	}
	return input + styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", g.itemCount(), len(g.tiles)))
}
