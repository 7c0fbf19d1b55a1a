package youtube

import "errors"

var (
	// ErrTranscriptsDisabled signals that the video exists but has no caption tracks at all.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	// ErrNoTranscriptFound signals that none of the requested languages is available.
	ErrNoTranscriptFound = errors.New("no transcript found for the requested languages")
	// ErrVideoUnavailable signals that the video doesn't exist or was removed.
	ErrVideoUnavailable = errors.New("video is unavailable")

	// ErrVideoUnplayable signals that YouTube refuses to play the video, e.g. because it's age restricted
	// or because the request was identified as coming from a bot.
	ErrVideoUnplayable = errors.New("video is unplayable")
	// ErrTooManyRequests signals that YouTube rate limits the requests of this client.
	ErrTooManyRequests = errors.New("too many requests, YouTube asks for a captcha")
	// ErrPoTokenRequired signals that the selected caption track can only be fetched by a browser.
	ErrPoTokenRequired = errors.New("caption track requires a PoToken")
)
