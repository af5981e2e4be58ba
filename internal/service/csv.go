package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/multiview/internal/domain"
)

var csvHeader = []string{"url", "title", "type", "playlist_id"}

// ExportCSV renders the registry as url,title,type,playlist_id rows
func (s *StreamService) ExportCSV(ctx context.Context) (string, error) {
	reg, err := s.List(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write(csvHeader)
	for _, e := range reg.Streams {
		w.Write([]string{e.URL, e.Title, string(e.Kind), e.PlaylistID})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return b.String(), nil
}

// ImportResult reports the outcome of ImportCSV
type ImportResult struct {
	Imported   int `json:"imported"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
}

// ImportCSV adds rows from CSV text. The header row is optional. Rows
// without a usable URL or title are skipped; rows whose ID or URL is already
// registered (or repeated within the file) count as duplicates.
func (s *StreamService) ImportCSV(ctx context.Context, text string) (ImportResult, error) {
	var res ImportResult

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(ctx, func(reg *domain.Registry) error {
		for row := 0; ; row++ {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				var perr *csv.ParseError
				if errors.As(err, &perr) {
					res.Skipped++
					continue
				}
				return fmt.Errorf("read csv: %w", err)
			}

			if row == 0 && len(rec) > 0 && strings.HasPrefix(strings.ToLower(strings.TrimSpace(rec[0])), "url") {
				continue
			}

			entry, ok := entryFromRecord(rec)
			if !ok {
				res.Skipped++
				continue
			}
			if reg.Find(entry.ID) >= 0 || reg.HasURL(entry.URL) {
				res.Duplicates++
				continue
			}

			reg.Streams = append(reg.Streams, entry)
			res.Imported++
		}
		if res.Imported == 0 {
			return errNothingToSave
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNothingToSave) {
		return ImportResult{}, err
	}

	s.logger.Info("csv import finished", "imported", res.Imported, "skipped", res.Skipped, "duplicates", res.Duplicates)
	return res, nil
}

// entryFromRecord builds an entry from url,title[,type,playlist_id]
func entryFromRecord(rec []string) (domain.StreamEntry, bool) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	rawURL, title := field(0), field(1)
	if rawURL == "" || title == "" {
		return domain.StreamEntry{}, false
	}

	id, kind, playlistID, err := domain.Classify(rawURL)
	if err != nil {
		// A playlist row may carry its ID only in the playlist_id column
		if pid := field(3); pid != "" && strings.EqualFold(field(2), string(domain.KindPlaylist)) {
			id, kind, playlistID = domain.PlaylistEntryID(pid), domain.KindPlaylist, pid
		} else {
			return domain.StreamEntry{}, false
		}
	}

	return domain.StreamEntry{
		ID:         id,
		Title:      title,
		URL:        rawURL,
		Kind:       kind,
		PlaylistID: playlistID,
	}, true
}
