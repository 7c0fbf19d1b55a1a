package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xybydy/go-ytsubs/types"
)

const captionXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="1.2">Привіт &amp;amp; вітаю</text>
<text start="1.7" dur="2">  </text>
<text start="3.7" dur="2.1">&lt;i&gt;світ&lt;/i&gt;</text>
</transcript>`

// fakeYouTube serves a configurable player response, watch page and caption XML.
type fakeYouTube struct {
	srv *httptest.Server

	playerStatus int
	playerBody   string
	pageBody     string

	playerCalls atomic.Int32
	pageCalls   atomic.Int32
}

func newFakeYouTube(t *testing.T) *fakeYouTube {
	t.Helper()
	f := &fakeYouTube{playerStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		f.playerCalls.Add(1)
		w.WriteHeader(f.playerStatus)
		fmt.Fprint(w, f.playerBody)
	})
	mux.HandleFunc("GET /watch", func(w http.ResponseWriter, r *http.Request) {
		f.pageCalls.Add(1)
		fmt.Fprint(w, f.pageBody)
	})
	mux.HandleFunc("GET /api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fmt") != "" {
			http.Error(w, "unexpected format", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, captionXML)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeYouTube) client() *Client {
	return NewClient(ClientOptions{BaseURL: f.srv.URL}, nil)
}

// tracksJSON returns a player response with a manual Ukrainian and a generated English track.
func (f *fakeYouTube) tracksJSON(extraQuery string) string {
	return `{
		"playabilityStatus": {"status": "OK"},
		"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
			{"baseUrl": "` + f.srv.URL + `/api/timedtext?v=ABC123&lang=uk` + extraQuery + `", "name": {"simpleText": "Ukrainian"}, "languageCode": "uk", "isTranslatable": true},
			{"baseUrl": "` + f.srv.URL + `/api/timedtext?v=ABC123&lang=en&kind=asr", "name": {"runs": [{"text": "English "}, {"text": "(auto-generated)"}]}, "languageCode": "en", "kind": "asr"}
		]}}
	}`
}

func watchPageHTML(playerJSON string) string {
	return `<!DOCTYPE html><html><head><title>video</title></head><body>
<script nonce="x">var ytInitialData = {};</script>
<script nonce="x">var ytInitialPlayerResponse = ` + playerJSON + `;var meta = document.createElement('meta');</script>
</body></html>`
}

func TestListTranscriptsFromInnertube(t *testing.T) {
	f := newFakeYouTube(t)
	f.playerBody = f.tracksJSON("")

	tracks, err := f.client().ListTranscripts(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	require.Equal(t, "Ukrainian", tracks[0].Language)
	require.Equal(t, "uk", tracks[0].LanguageCode)
	require.False(t, tracks[0].IsGenerated)
	require.True(t, tracks[0].IsTranslatable)
	require.Equal(t, types.LanguageDescriptor{Language: "English (auto-generated)", LanguageCode: "en", IsGenerated: true}, tracks[1].Descriptor())
	require.EqualValues(t, 0, f.pageCalls.Load())
}

func TestListTranscriptsFallsBackToWatchPage(t *testing.T) {
	f := newFakeYouTube(t)
	f.playerStatus = http.StatusInternalServerError
	f.pageBody = watchPageHTML(f.tracksJSON(""))

	tracks, err := f.client().ListTranscripts(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	require.EqualValues(t, 1, f.playerCalls.Load())
	require.EqualValues(t, 1, f.pageCalls.Load())
}

func TestListTranscriptsErrors(t *testing.T) {
	tests := []struct {
		name       string
		playerBody string
		pageBody   string
		wantErr    error
		wantPage   bool
	}{
		{
			name:       "video unavailable",
			playerBody: `{"playabilityStatus": {"status": "ERROR", "reason": "This video is unavailable"}}`,
			wantErr:    ErrVideoUnavailable,
		},
		{
			name:       "transcripts disabled",
			playerBody: `{"playabilityStatus": {"status": "OK"}}`,
			pageBody:   watchPageHTML(`{"playabilityStatus": {"status": "OK"}}`),
			wantErr:    ErrTranscriptsDisabled,
			wantPage:   true,
		},
		{
			name:       "empty track list",
			playerBody: `{"playabilityStatus": {"status": "OK"}, "captions": {"playerCaptionsTracklistRenderer": {"captionTracks": []}}}`,
			wantErr:    ErrTranscriptsDisabled,
		},
		{
			name:       "login required",
			playerBody: `{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm your age"}}`,
			pageBody:   watchPageHTML(`{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm your age"}}`),
			wantErr:    ErrVideoUnplayable,
			wantPage:   true,
		},
		{
			name:       "captcha",
			playerBody: `{"playabilityStatus": {"status": "OK"}}`,
			pageBody:   `<html><body><form><div class="g-recaptcha"></div></form></body></html>`,
			wantErr:    ErrTooManyRequests,
			wantPage:   true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFakeYouTube(t)
			f.playerBody = test.playerBody
			f.pageBody = test.pageBody

			_, err := f.client().ListTranscripts(context.Background(), "ABC123")
			require.ErrorIs(t, err, test.wantErr)
			if test.wantPage {
				require.EqualValues(t, 1, f.pageCalls.Load())
			} else {
				require.EqualValues(t, 0, f.pageCalls.Load())
			}
		})
	}
}

func TestListTranscriptsBothSourcesFail(t *testing.T) {
	f := newFakeYouTube(t)
	f.playerStatus = http.StatusBadGateway
	f.pageBody = "<html><body>nothing here</body></html>"

	_, err := f.client().ListTranscripts(context.Background(), "ABC123")
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 502")
	require.Contains(t, err.Error(), "ytInitialPlayerResponse not found")
	require.False(t, errors.Is(err, ErrVideoUnavailable))
}

func TestFetchTranscript(t *testing.T) {
	f := newFakeYouTube(t)
	f.playerBody = f.tracksJSON("&fmt=srv3")

	lines, err := f.client().FetchTranscript(context.Background(), "ABC123", []string{"uk"})
	require.NoError(t, err)
	require.Equal(t, []types.TranscriptLine{
		{Text: "Привіт & вітаю", Start: 0.5, Duration: 1.2},
		{Text: "світ", Start: 3.7, Duration: 2.1},
	}, lines)
}

func TestFetchTranscriptNoTranscriptFound(t *testing.T) {
	f := newFakeYouTube(t)
	f.playerBody = f.tracksJSON("")

	_, err := f.client().FetchTranscript(context.Background(), "ABC123", []string{"de"})
	require.ErrorIs(t, err, ErrNoTranscriptFound)
	require.Contains(t, err.Error(), "[uk en]")
}

func TestFetchTranscriptPoToken(t *testing.T) {
	f := newFakeYouTube(t)
	f.playerBody = f.tracksJSON("&exp=xpe")

	_, err := f.client().FetchTranscript(context.Background(), "ABC123", []string{"uk"})
	require.ErrorIs(t, err, ErrPoTokenRequired)
}

func TestFetchTranscriptContextCanceled(t *testing.T) {
	f := newFakeYouTube(t)
	f.playerBody = f.tracksJSON("")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.client().FetchTranscript(ctx, "ABC123", []string{"uk"})
	require.ErrorIs(t, err, context.Canceled)
	require.EqualValues(t, 0, f.pageCalls.Load())
}

func TestPickTrack(t *testing.T) {
	tracks := []types.CaptionTrack{
		{LanguageCode: "en", IsGenerated: true, BaseURL: "en-asr"},
		{LanguageCode: "de", BaseURL: "de"},
		{LanguageCode: "en", BaseURL: "en"},
		{LanguageCode: "uk", IsGenerated: true, BaseURL: "uk-asr"},
	}

	tests := []struct {
		name      string
		languages []string
		want      string
	}{
		{"manual preferred", []string{"en"}, "en"},
		{"generated when no manual", []string{"uk"}, "uk-asr"},
		{"first matching language wins", []string{"fr", "uk", "en"}, "uk-asr"},
		{"auto picks first manual", []string{AutoLanguage}, "de"},
		{"no languages means auto", nil, "de"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			track, err := pickTrack(tracks, test.languages)
			require.NoError(t, err)
			require.Equal(t, test.want, track.BaseURL)
		})
	}

	_, err := pickTrack(tracks, []string{"fr"})
	require.ErrorIs(t, err, ErrNoTranscriptFound)

	_, err = pickTrack(nil, []string{AutoLanguage})
	require.ErrorIs(t, err, ErrTranscriptsDisabled)
}

func TestParseTimedText(t *testing.T) {
	lines, err := parseTimedText([]byte(`<transcript><text start="1" dur="2">it&amp;#39;s &lt;font color="#E5E5E5"&gt;fine&lt;/font&gt;</text></transcript>`))
	require.NoError(t, err)
	require.Equal(t, []types.TranscriptLine{{Text: "it's fine", Start: 1, Duration: 2}}, lines)

	lines, err = parseTimedText([]byte("  "))
	require.NoError(t, err)
	require.Empty(t, lines)

	_, err = parseTimedText([]byte("<transcript><text>unclosed"))
	require.Error(t, err)
}

func TestSourceString(t *testing.T) {
	require.Equal(t, "innertube player", innertubePlayer.String())
	require.Equal(t, "watch page", watchPage.String())
}
