package youtube

import (
	"context"
	"log/slog"
)

const (
	pageSize = 50 // maximum allowed by the Data API
	maxPages = 20 // 20 * 50 = 1000 items
)

// fetchAll follows nextPageToken until exhausted or maxPages is reached.
// A failure on the first page is returned; a later failure ends paging and
// the pages already fetched are returned with a nil error.
func fetchAll[T any](
	ctx context.Context,
	logger *slog.Logger,
	op, resource string,
	fetch func(ctx context.Context, pageToken string) ([]T, string, error),
) ([]T, error) {
	var all []T
	token := ""

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			if page == 1 {
				return nil, err
			}
			logger.Warn("paging cancelled", "op", op, "resource", resource, "page", page, "error", err)
			return all, nil
		}

		items, next, err := fetch(ctx, token)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			logger.Warn("page fetch failed, returning partial result",
				"op", op, "resource", resource, "page", page, "fetched", len(all), "error", err)
			return all, nil
		}

		all = append(all, items...)

		if next == "" {
			return all, nil
		}
		token = next

		if page == maxPages {
			logger.Debug("page cap reached, truncating", "op", op, "resource", resource, "fetched", len(all))
		}
	}

	return all, nil
}
