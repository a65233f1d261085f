package device

// MediaProfile is a named bundle of video/audio/PTZ configuration
// identifying one capturable stream. Profile identity is the token;
// profiles keep the order they appear in the GetProfiles response.
type MediaProfile struct {
	Token string
	Name  string

	VideoEncoder VideoEncoderConfig
	VideoSource  VideoSourceConfig
	AudioEncoder AudioEncoderConfig
	AudioSource  AudioSourceConfig
	PTZ          PTZConfig

	// StreamURI is resolved last, by a per-profile GetStreamUri call.
	StreamURI string
}

// VideoEncoderConfig describes the video encoder attached to a profile.
type VideoEncoderConfig struct {
	Token     string
	Encoding  string
	Width     int
	Height    int
	FrameRate int
}

// VideoSourceConfig describes the video source attached to a profile.
type VideoSourceConfig struct {
	Token       string
	Name        string
	SourceToken string
	Bounds      Bounds
}

// Bounds is the capture window of a video source.
type Bounds struct {
	X      int
	Y      int
	Width  int
	Height int
}

// AudioEncoderConfig describes the audio encoder attached to a profile.
type AudioEncoderConfig struct {
	Token      string
	Encoding   string
	SampleRate int
	Bitrate    int
}

// AudioSourceConfig describes the audio source attached to a profile.
type AudioSourceConfig struct {
	Token       string
	Name        string
	SourceToken string
}

// PTZConfig describes the PTZ configuration attached to a profile.
type PTZConfig struct {
	Token     string
	NodeToken string
}
