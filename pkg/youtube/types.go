package youtube

import (
	"strings"

	"github.com/xybydy/go-ytsubs/types"
)

// source is where the caption track list of a video was found.
type source int

const (
	innertubePlayer source = iota + 1
	watchPage
)

func (s source) String() string {
	return [...]string{"innertube player", "watch page"}[s-1]
}

// --- ANDROID client types (/player endpoint) ---

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

// playerResponse is the part of a player response we care about.
// The Innertube /player endpoint and the ytInitialPlayerResponse blob of the watch page share this shape.
type playerResponse struct {
	PlayabilityStatus *playabilityStatus `json:"playabilityStatus"`
	Captions          *struct {
		Renderer *struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type playabilityStatus struct {
	Status string `json:"status"` // "OK", "ERROR", "LOGIN_REQUIRED", "UNPLAYABLE"
	Reason string `json:"reason"`
}

type captionTrack struct {
	BaseURL        string    `json:"baseUrl"`
	Name           trackName `json:"name"`
	LanguageCode   string    `json:"languageCode"`
	Kind           string    `json:"kind"` // "asr" = auto-generated
	IsTranslatable bool      `json:"isTranslatable"`
}

// trackName is either {"simpleText": "..."} or {"runs": [{"text": "..."}]}.
type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n trackName) String() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}
	var sb strings.Builder
	for _, run := range n.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

func (t captionTrack) toType() types.CaptionTrack {
	return types.CaptionTrack{
		Language:       t.Name.String(),
		LanguageCode:   t.LanguageCode,
		IsGenerated:    t.Kind == "asr",
		IsTranslatable: t.IsTranslatable,
		BaseURL:        t.BaseURL,
	}
}

// --- Timedtext XML types ---

// <text start="3285.28" dur="4.88">surprised you with how they comport</text>
type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Text     string  `xml:",chardata"`
}
