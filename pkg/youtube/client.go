package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xybydy/go-ytsubs/types"
)

const (
	// AutoLanguage can be passed as language to let the client pick a track.
	// A manually created track is preferred over an auto-generated one.
	AutoLanguage = "auto"

	defaultBaseURL        = "https://www.youtube.com"
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAcceptLanguage = "en-US,en;q=0.9"
)

// ClientOptions are the options for the YouTube client.
type ClientOptions struct {
	// The base URL of YouTube, without trailing slash.
	// Default "https://www.youtube.com".
	BaseURL string
	// Timeout for the HTTP client that's created when HTTPClient is nil.
	// Default 15s.
	Timeout time.Duration
	// User agent for watch page and caption requests.
	UserAgent string
	// Accept-Language header for watch page requests. It also influences the names of the caption tracks.
	// Default "en-US,en;q=0.9".
	AcceptLanguage string
	// Custom HTTP client.
	HTTPClient *http.Client
}

// DefaultClientOptions is a ClientOptions object with default values.
var DefaultClientOptions = ClientOptions{
	BaseURL:        defaultBaseURL,
	Timeout:        15 * time.Second,
	UserAgent:      defaultUserAgent,
	AcceptLanguage: defaultAcceptLanguage,
}

// Client fetches caption tracks and transcripts of YouTube videos.
// It doesn't retry or cache anything. Every call does its own round trips to YouTube.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	acceptLanguage string
	logger         *zap.Logger
}

// NewClient returns a new YouTube client.
// Zero values in the options are replaced by the ones of DefaultClientOptions. A nil logger disables logging.
func NewClient(opts ClientOptions, logger *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultClientOptions.BaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultClientOptions.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultClientOptions.UserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = DefaultClientOptions.AcceptLanguage
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:     opts.HTTPClient,
		baseURL:        strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent:      opts.UserAgent,
		acceptLanguage: opts.AcceptLanguage,
		logger:         logger,
	}
}

// ListTranscripts returns the caption tracks of the video in the order YouTube lists them.
// It returns an error wrapping ErrVideoUnavailable if the video doesn't exist
// and one wrapping ErrTranscriptsDisabled if the video has no caption tracks.
func (c *Client) ListTranscripts(ctx context.Context, videoID string) ([]types.CaptionTrack, error) {
	player, src, err := c.player(ctx, videoID)
	if err != nil {
		return nil, err
	}

	tracks, err := player.captionTracks(videoID)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Found caption tracks", zap.String("videoID", videoID), zap.Stringer("source", src), zap.Int("count", len(tracks)))

	result := make([]types.CaptionTrack, 0, len(tracks))
	for _, track := range tracks {
		result = append(result, track.toType())
	}
	return result, nil
}

// FetchTranscript fetches the transcript of the first track that matches one of the languages.
// The languages are checked in order and for each language a manually created track is preferred over an auto-generated one.
// Pass AutoLanguage to accept any track.
// It returns an error wrapping ErrNoTranscriptFound if no track matches, in addition to the errors of ListTranscripts.
func (c *Client) FetchTranscript(ctx context.Context, videoID string, languages []string) ([]types.TranscriptLine, error) {
	tracks, err := c.ListTranscripts(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, err := pickTrack(tracks, languages)
	if err != nil {
		return nil, err
	}
	if needsPoToken(track.BaseURL) {
		return nil, fmt.Errorf("%w: language %q", ErrPoTokenRequired, track.LanguageCode)
	}

	return c.fetchTimedText(ctx, track.BaseURL)
}

// player tries the Innertube player endpoint first and falls back to the watch page
// if that didn't work or returned no caption data for a video that exists.
func (c *Client) player(ctx context.Context, videoID string) (*playerResponse, source, error) {
	resp, err := c.fetchInnertubePlayer(ctx, videoID)
	if err == nil && (resp.Captions != nil || resp.unavailable()) {
		return resp, innertubePlayer, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, 0, ctxErr
	}

	c.logger.Debug("Innertube player returned no captions, falling back to the watch page", zap.String("videoID", videoID), zap.Error(err))
	pageResp, pageErr := c.fetchWatchPagePlayer(ctx, videoID)
	switch {
	case pageErr == nil:
		return pageResp, watchPage, nil
	case err != nil:
		return nil, 0, fmt.Errorf("innertube player: %w; watch page: %w", err, pageErr)
	case errors.Is(pageErr, ErrTooManyRequests):
		return nil, 0, pageErr
	}
	// The Innertube response is still the best we have, e.g. a LOGIN_REQUIRED status with a reason.
	return resp, innertubePlayer, nil
}

func (p *playerResponse) unavailable() bool {
	return p.PlayabilityStatus != nil && p.PlayabilityStatus.Status == "ERROR"
}

// captionTracks classifies the player response.
func (p *playerResponse) captionTracks(videoID string) ([]captionTrack, error) {
	if ps := p.PlayabilityStatus; ps != nil {
		switch ps.Status {
		case "ERROR":
			return nil, fmt.Errorf("%w: %s (%s)", ErrVideoUnavailable, videoID, ps.Reason)
		case "LOGIN_REQUIRED", "UNPLAYABLE":
			if ps.Reason != "" {
				return nil, fmt.Errorf("%w: %s", ErrVideoUnplayable, ps.Reason)
			}
		}
	}
	if p.Captions == nil || p.Captions.Renderer == nil || len(p.Captions.Renderer.CaptionTracks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTranscriptsDisabled, videoID)
	}
	return p.Captions.Renderer.CaptionTracks, nil
}

// pickTrack selects the track for the given language preferences.
func pickTrack(tracks []types.CaptionTrack, languages []string) (types.CaptionTrack, error) {
	if len(tracks) == 0 {
		return types.CaptionTrack{}, ErrTranscriptsDisabled
	}
	if len(languages) == 0 {
		languages = []string{AutoLanguage}
	}
	for _, lang := range languages {
		if lang == AutoLanguage {
			for _, t := range tracks {
				if !t.IsGenerated {
					return t, nil
				}
			}
			return tracks[0], nil
		}
		// 1. Manual track
		for _, t := range tracks {
			if t.LanguageCode == lang && !t.IsGenerated {
				return t, nil
			}
		}
		// 2. Auto-generated track
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t, nil
			}
		}
	}

	available := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if !slices.Contains(available, t.LanguageCode) {
			available = append(available, t.LanguageCode)
		}
	}
	return types.CaptionTrack{}, fmt.Errorf("%w: requested %v, available %v", ErrNoTranscriptFound, languages, available)
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// do sends the request and returns the body of a 200 response, read up to limit bytes.
func (c *Client) do(req *http.Request, limit int64) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	case res.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		return nil, fmt.Errorf("HTTP %d: %s", res.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(res.Body, limit))
}
