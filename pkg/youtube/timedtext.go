package youtube

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"

	"github.com/xybydy/go-ytsubs/types"
)

var markupRE = regexp.MustCompile(`<[^>]*>`)

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func (c *Client) fetchTimedText(ctx context.Context, baseURL string) ([]types.TranscriptLine, error) {
	// srv3 is a different XML dialect, the default one is what parseTimedText understands.
	captionURL := strings.Replace(baseURL, "&fmt=srv3", "", 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captionURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	body, err := c.do(req, 4*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	return parseTimedText(body)
}

// parseTimedText returns the non-empty caption lines in document order.
// Entities are decoded and markup like <i> or <font> is removed.
func parseTimedText(body []byte) ([]types.TranscriptLine, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var tt timedText
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	lines := make([]types.TranscriptLine, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		// Caption text is often escaped twice, e.g. "&amp;#39;".
		text := html.UnescapeString(line.Text)
		text = strings.TrimSpace(markupRE.ReplaceAllString(text, ""))
		if text == "" {
			continue
		}
		lines = append(lines, types.TranscriptLine{
			Text:     text,
			Start:    line.Start,
			Duration: line.Duration,
		})
	}
	return lines, nil
}
