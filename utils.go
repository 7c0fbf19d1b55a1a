package ytsubs

import (
	"regexp"
	"strings"
)

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID returns the video ID of a YouTube URL.
// Rules, checked in order:
//  1. "…watch?v=ID&…": the part after the last "v=" up to the next "&".
//  2. "…youtu.be/ID?…": the part after "youtu.be/" up to the next "?".
//  3. Anything else is returned unchanged, as it's assumed to be an ID already.
//
// The result isn't validated. Use IsValidVideoID for that.
func ExtractVideoID(url string) string {
	switch {
	case strings.Contains(url, "watch?v="):
		id := url[strings.LastIndex(url, "v=")+len("v="):]
		id, _, _ = strings.Cut(id, "&")
		return id
	case strings.Contains(url, "youtu.be/"):
		_, id, _ := strings.Cut(url, "youtu.be/")
		id, _, _ = strings.Cut(id, "?")
		return id
	}
	return url
}

// IsValidVideoID reports whether id has the shape of a YouTube video ID.
func IsValidVideoID(id string) bool {
	return videoIDRE.MatchString(id)
}
