package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/mmcdole/multiview/internal/domain"
)

func validGridSize(n int) bool {
	return n == 1 || n == 4 || n == 9
}

type gridSlot struct {
	Tile  *domain.GridTile
	Label string
}

type gridOption struct {
	ID       string
	Title    string
	Selected bool
}

type gridPageData struct {
	Size        int
	Sizes       []int
	Cols        int
	Rows        int
	Slots       []gridSlot
	Options     []gridOption
	Empty       bool
	AutoRefresh bool
}

// handleGrid renders ?streams=id,id&size=N. Without a selection the first N
// registry entries are shown.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	size := s.opts.GridSize
	if n, err := strconv.Atoi(q.Get("size")); err == nil && validGridSize(n) {
		size = n
	}

	var ids []string
	for _, id := range strings.Split(q.Get("streams"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	tiles, err := s.streams.GridEntries(ctx, ids)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	reg, err := s.streams.List(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := gridPageData{
		Size:        size,
		Sizes:       []int{1, 4, 9},
		Empty:       len(tiles) == 0,
		AutoRefresh: reg.AutoRefreshEnabled,
	}
	data.Cols, data.Rows = domain.GridShape(size)

	shown := make(map[string]bool)
	for i := 0; i < size; i++ {
		if i < len(tiles) {
			t := tiles[i]
			shown[t.Entry.ID] = true
			data.Slots = append(data.Slots, gridSlot{Tile: &t, Label: t.Entry.Title})
			continue
		}
		data.Slots = append(data.Slots, gridSlot{Label: "Empty Slot"})
	}
	for _, e := range reg.Streams {
		data.Options = append(data.Options, gridOption{ID: e.ID, Title: e.Title, Selected: shown[e.ID]})
	}

	var buf bytes.Buffer
	if err := gridPage.Execute(&buf, data); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

var gridPage = template.Must(template.New("grid").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>multiview</title>
<style>
  body { margin: 0; background: #111; color: #ddd; font-family: sans-serif; }
  header { display: flex; gap: 1rem; align-items: center; padding: .5rem 1rem; background: #1b1b1b; }
  header form { display: flex; gap: .5rem; align-items: center; flex-wrap: wrap; }
  .grid { display: grid; gap: 4px; height: calc(100vh - 3.5rem);
          grid-template-columns: repeat({{.Cols}}, 1fr); grid-template-rows: repeat({{.Rows}}, 1fr); }
  .tile { position: relative; background: #000; overflow: hidden; }
  .tile iframe { width: 100%; height: 100%; border: 0; }
  .label { position: absolute; top: 0; left: 0; padding: 2px 6px; background: rgba(0,0,0,.6); font-size: .8rem; }
  .live { color: #f55; font-weight: bold; }
  .empty { display: flex; align-items: center; justify-content: center; color: #555; }
  .notice { padding: 2rem; text-align: center; }
</style>
</head>
<body>
<header>
  <form method="get" action="/">
    <label>Size
      <select name="size">
        {{range .Sizes}}<option value="{{.}}"{{if eq . $.Size}} selected{{end}}>{{.}}</option>{{end}}
      </select>
    </label>
    <select name="streams" id="stream-select" multiple size="1">
      {{range .Options}}<option value="{{.ID}}"{{if .Selected}} selected{{end}}>{{.Title}}</option>{{end}}
    </select>
    <button type="submit">Show</button>
  </form>
  {{if .AutoRefresh}}<span class="auto-refresh">auto-refresh on</span>{{end}}
</header>
{{if .Empty}}
<div class="notice">No streams selected</div>
{{else}}
<div class="grid">
  {{range .Slots}}
  {{if .Tile}}
  <div class="tile" data-id="{{.Tile.Entry.ID}}">
    {{if .Tile.EmbedURL}}
    <iframe src="{{.Tile.EmbedURL}}" allow="autoplay; encrypted-media; fullscreen" allowfullscreen></iframe>
    {{else}}
    <div class="empty">Not resolved yet</div>
    {{end}}
    <div class="label">{{if .Tile.IsLive}}<span class="live">LIVE</span> {{end}}{{.Label}}{{if .Tile.DeviceName}} · {{.Tile.DeviceName}}{{end}}</div>
  </div>
  {{else}}
  <div class="tile empty">{{.Label}}</div>
  {{end}}
  {{end}}
</div>
{{end}}
<script>
  // the multi-select posts repeated streams= params; fold them into one
  document.querySelector("header form").addEventListener("submit", function (ev) {
    ev.preventDefault();
    var sel = Array.from(document.getElementById("stream-select").selectedOptions).map(function (o) { return o.value; });
    var size = this.elements.size.value;
    var q = "?size=" + encodeURIComponent(size);
    if (sel.length) { q += "&streams=" + sel.map(encodeURIComponent).join(","); }
    window.location.search = q;
  });
</script>
</body>
</html>
`))
