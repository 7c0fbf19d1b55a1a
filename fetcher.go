package ytsubs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"

	"github.com/xybydy/go-ytsubs/pkg/youtube"
	"github.com/xybydy/go-ytsubs/types"
)

// TranscriptSource is the external collaborator that knows how to talk to YouTube.
// *youtube.Client implements it.
// Implementations signal the distinct failures with youtube.ErrTranscriptsDisabled,
// youtube.ErrNoTranscriptFound and youtube.ErrVideoUnavailable (wrapped or not).
// Any other error is treated as upstream failure.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, videoID string, languages []string) ([]types.TranscriptLine, error)
	ListTranscripts(ctx context.Context, videoID string) ([]types.CaptionTrack, error)
}

var _ TranscriptSource = (*youtube.Client)(nil)

// FetcherOptions are the options for the Fetcher.
type FetcherOptions struct {
	// Timeout for a single call to the transcript source.
	// Default 30s.
	Timeout time.Duration
}

// DefaultFetcherOptions is a FetcherOptions object with default values.
var DefaultFetcherOptions = FetcherOptions{
	Timeout: 30 * time.Second,
}

// Fetcher turns the results of a TranscriptSource into plain text or language descriptors
// and its failures into a *FetchError.
type Fetcher struct {
	source  TranscriptSource
	timeout time.Duration
	logger  *zap.Logger
}

// NewFetcher creates a new Fetcher. A nil logger disables logging.
func NewFetcher(source TranscriptSource, opts FetcherOptions, logger *zap.Logger) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultFetcherOptions.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source:  source,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// FetchText returns the transcript of the video in the given language,
// with the text of all lines joined by single spaces.
func (f *Fetcher) FetchText(ctx context.Context, videoID, lang string) (string, error) {
	start := time.Now()
	lines, err := callWithTimeout(ctx, f.timeout, func(ctx context.Context) ([]types.TranscriptLine, error) {
		return f.source.FetchTranscript(ctx, videoID, []string{lang})
	})
	if err != nil {
		return "", f.fail("fetch_text", start, &FetchError{Kind: classify(err), VideoID: videoID, Lang: lang, Err: err})
	}

	texts := make([]string, 0, len(lines))
	for _, line := range lines {
		texts = append(texts, line.Text)
	}
	text := strings.Join(texts, " ")
	if text == "" {
		return "", f.fail("fetch_text", start, &FetchError{Kind: KindEmptyTranscript, VideoID: videoID, Lang: lang})
	}

	observe("fetch_text", "ok", start)
	return text, nil
}

// ListLanguages returns the available caption languages of the video.
// The returned slice is empty but not nil if there are none.
func (f *Fetcher) ListLanguages(ctx context.Context, videoID string) ([]types.LanguageDescriptor, error) {
	start := time.Now()
	tracks, err := callWithTimeout(ctx, f.timeout, func(ctx context.Context) ([]types.CaptionTrack, error) {
		return f.source.ListTranscripts(ctx, videoID)
	})
	if err != nil {
		// Only the video being unavailable is a "not found" here.
		kind := classify(err)
		if kind != KindVideoUnavailable && kind != KindTimeout {
			kind = KindUpstream
		}
		return nil, f.fail("list_languages", start, &FetchError{Kind: kind, VideoID: videoID, Err: err})
	}

	descriptors := make([]types.LanguageDescriptor, 0, len(tracks))
	for _, track := range tracks {
		descriptors = append(descriptors, track.Descriptor())
	}

	observe("list_languages", "ok", start)
	return descriptors, nil
}

func (f *Fetcher) fail(op string, start time.Time, fe *FetchError) error {
	observe(op, fe.Kind.String(), start)
	f.logger.Warn("Transcript source call failed", zap.String("op", op), zap.String("videoID", fe.VideoID),
		zap.Stringer("kind", fe.Kind), zap.Error(fe.Err))
	return fe
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, youtube.ErrTranscriptsDisabled):
		return KindTranscriptsDisabled
	case errors.Is(err, youtube.ErrNoTranscriptFound):
		return KindNoTranscript
	case errors.Is(err, youtube.ErrVideoUnavailable):
		return KindVideoUnavailable
	}
	return KindUpstream
}

func observe(op, kind string, start time.Time) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`ytsubs_upstream_calls_total{op=%q,kind=%q}`, op, kind)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`ytsubs_upstream_call_duration_seconds{op=%q}`, op)).UpdateDuration(start)
}

// callWithTimeout runs fn with a deadline and returns as soon as the deadline expires,
// even if fn ignores its context.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		resultCh <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-resultCh:
		return res.v, res.err
	}
}
