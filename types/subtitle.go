package types

// TranscriptLine is one timed caption entry as returned by a transcript source.
// Only Text is used when building a plain-text transcript.
type TranscriptLine struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// CaptionTrack describes one caption track of a video as reported by a transcript source.
type CaptionTrack struct {
	Language       string `json:"language"`      // Human readable name, e.g. "English (auto-generated)"
	LanguageCode   string `json:"language_code"` // e.g. "en" or "uk"
	IsGenerated    bool   `json:"is_generated"`  // YouTube's automatic speech recognition
	IsTranslatable bool   `json:"is_translatable,omitempty"`
	BaseURL        string `json:"-"`
}

// LanguageDescriptor is the public view of a CaptionTrack.
type LanguageDescriptor struct {
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
	IsGenerated  bool   `json:"is_generated"`
}

// Descriptor returns the LanguageDescriptor for the track.
func (t CaptionTrack) Descriptor() LanguageDescriptor {
	return LanguageDescriptor{
		Language:     t.Language,
		LanguageCode: t.LanguageCode,
		IsGenerated:  t.IsGenerated,
	}
}
