package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/multiview/internal/domain"
)

// CheckEmbeddable asks the oEmbed endpoint whether a video can be embedded.
// Only transport failures return an error; HTTP outcomes are reported in
// the status.
func (c *Client) CheckEmbeddable(ctx context.Context, videoID string) (domain.EmbedStatus, error) {
	status := domain.EmbedStatus{VideoID: videoID, CheckedAt: time.Now()}

	query := url.Values{}
	query.Set("url", domain.WatchURL(videoID))
	query.Set("format", "json")

	body, err := c.doRequest(ctx, c.oembedURL+"?"+query.Encode(), "oembed")
	if err != nil {
		var ue *domain.UpstreamError
		if !errors.As(err, &ue) || ue.StatusCode == 0 {
			return status, withContext(err, "video "+videoID)
		}
		switch ue.StatusCode {
		case http.StatusUnauthorized:
			status.Message = "Video is private or restricted"
		case http.StatusNotFound:
			status.Message = "Video not found or unavailable"
		default:
			status.Message = fmt.Sprintf("Video embedding check failed (status: %d)", ue.StatusCode)
		}
		return status, nil
	}

	var resp OEmbedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return status, &domain.UpstreamError{Op: "oembed", Context: "video " + videoID, StatusCode: http.StatusOK, Err: err}
	}

	title := resp.Title
	if title == "" {
		title = "Unknown"
	}
	status.Embeddable = true
	status.Title = resp.Title
	status.EmbedURL = iframeSrc(resp.HTML)
	status.Message = fmt.Sprintf("Video '%s' is embeddable", title)
	return status, nil
}

// iframeSrc pulls the player URL out of the oEmbed html snippet
func iframeSrc(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("iframe").First().Attr("src")
	return src
}
