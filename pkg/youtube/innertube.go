package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// YouTube Innertube API, low-level constants and the /player call.

const (
	innertubePlayerPath = "/youtubei/v1/player"
	androidVersion      = "20.10.38"
	androidUA           = "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip"
)

// fetchInnertubePlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func (c *Client) fetchInnertubePlayer(ctx context.Context, videoID string) (*playerResponse, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+innertubePlayerPath+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidVersion)

	body, err := c.do(req, 3*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}

	resp := new(playerResponse)
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return resp, nil
}
