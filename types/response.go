package types

// InfoResponse is the body of a successful "/subtitles/info" request.
type InfoResponse struct {
	VideoID            string               `json:"video_id"`
	AvailableLanguages []LanguageDescriptor `json:"available_languages"`
}

// HealthResponse is the body of the "/health" endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every 4xx and 5xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Descriptor describes the service and its routes. It's returned by the root endpoint.
type Descriptor struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Clone returns a deep copy of d.
func (d Descriptor) Clone() Descriptor {
	var endpoints map[string]string
	if d.Endpoints != nil {
		endpoints = make(map[string]string, len(d.Endpoints))
		for path, desc := range d.Endpoints {
			endpoints[path] = desc
		}
	}
	return Descriptor{
		Message:   d.Message,
		Version:   d.Version,
		Endpoints: endpoints,
	}
}
