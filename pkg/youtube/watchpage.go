package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// initialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const initialPlayerResponseMarker = "ytInitialPlayerResponse = "

// fetchWatchPagePlayer scrapes the YouTube watch page HTML and decodes the ytInitialPlayerResponse blob.
func (c *Client) fetchWatchPagePlayer(ctx context.Context, videoID string) (*playerResponse, error) {
	watchURL := c.baseURL + "/watch?v=" + url.QueryEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", c.acceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	body, err := c.do(req, 6*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	return parseWatchPage(body)
}

func parseWatchPage(body []byte) (*playerResponse, error) {
	if bytes.Contains(body, []byte(`class="g-recaptcha"`)) {
		return nil, ErrTooManyRequests
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	var blob string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if i := strings.Index(text, initialPlayerResponseMarker); i >= 0 {
			blob = text[i+len(initialPlayerResponseMarker):]
			return false
		}
		return true
	})
	if blob == "" {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}

	// Decode with a json.Decoder so that the JavaScript after the blob is ignored.
	resp := new(playerResponse)
	if err := json.NewDecoder(strings.NewReader(blob)).Decode(resp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return resp, nil
}
