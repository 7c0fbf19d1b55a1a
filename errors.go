package ytsubs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrBadRequest signals that the client sent a bad request.
	// It leads to a "400 Bad Request" response.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound signals that there's no transcript for the request.
	// It leads to a "404 Not Found" response.
	ErrNotFound = errors.New("not found")
	// ErrTimeout signals that the transcript source didn't answer in time.
	// It leads to a "504 Gateway Timeout" response.
	ErrTimeout = errors.New("timeout")
	// ErrUpstream signals any other failure of the transcript source.
	// It leads to a "500 Internal Server Error" response.
	ErrUpstream = errors.New("upstream error")
)

// FailureKind is the closed set of reasons a transcript request can fail for.
type FailureKind int

const (
	KindUpstream FailureKind = iota
	KindEmptyTranscript
	KindNoTranscript
	KindTranscriptsDisabled
	KindVideoUnavailable
	KindBadRequest
	KindTimeout
)

func (k FailureKind) String() string {
	switch k {
	case KindEmptyTranscript:
		return "empty transcript"
	case KindNoTranscript:
		return "no transcript"
	case KindTranscriptsDisabled:
		return "transcripts disabled"
	case KindVideoUnavailable:
		return "video unavailable"
	case KindBadRequest:
		return "bad request"
	case KindTimeout:
		return "timeout"
	}
	return "upstream"
}

// StatusCode returns the HTTP status code the failure kind is answered with.
func (k FailureKind) StatusCode() int {
	switch k {
	case KindEmptyTranscript, KindNoTranscript, KindTranscriptsDisabled, KindVideoUnavailable:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// FetchError is returned by the Fetcher. Use errors.Is with ErrNotFound, ErrBadRequest, ErrTimeout or ErrUpstream
// to check the category, or errors.As to get the exact Kind.
type FetchError struct {
	Kind    FailureKind
	VideoID string
	Lang    string
	// Err is the error of the transcript source, if any.
	Err error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s for video %q: %v", e.Kind, e.VideoID, e.Err)
	}
	return fmt.Sprintf("%s for video %q", e.Kind, e.VideoID)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether the error belongs to the category of target.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind.StatusCode() == http.StatusNotFound
	case ErrBadRequest:
		return e.Kind == KindBadRequest
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrUpstream:
		return e.Kind == KindUpstream
	}
	return false
}

// Detail returns the localized message that's sent to the client.
// The text of upstream errors is only included if exposeUpstream is true.
func (e *FetchError) Detail(exposeUpstream bool) string {
	switch e.Kind {
	case KindEmptyTranscript:
		return "Субтитри не знайдено"
	case KindNoTranscript:
		return fmt.Sprintf("Субтитри мовою %q не знайдено", e.Lang)
	case KindTranscriptsDisabled:
		return "Субтитри для цього відео вимкнено"
	case KindVideoUnavailable:
		return "Відео недоступне"
	case KindBadRequest:
		return "Некоректне посилання або ідентифікатор відео"
	case KindTimeout:
		return "Помилка: час очікування відповіді вичерпано"
	}
	if exposeUpstream && e.Err != nil {
		return "Помилка: " + e.Err.Error()
	}
	return "Помилка: помилка зовнішнього сервісу"
}
