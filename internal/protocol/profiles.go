package protocol

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/muldr/camscan/internal/device"
)

// profileContext identifies which configuration subtree the profile
// parser is inside. Leaf elements that share local names across subtrees
// (Width, Name, Encoding, SourceToken, ...) are only captured while the
// matching context is active.
type profileContext int

const (
	ctxNone profileContext = iota
	ctxVideo
	ctxAudio
	ctxPTZ
	ctxVideoSource
	ctxAudioSource
)

// ParseMediaProfiles reads the profile list from a GetProfiles response.
// Each Profiles element starts a new profile; the profile is appended to
// the result on its closing tag, so the returned order is document order.
// Contexts are cleared on the closing tags of the configuration blocks,
// not of the profile.
func ParseMediaProfiles(raw string) ([]*device.MediaProfile, error) {
	var (
		profiles []*device.MediaProfile
		profile  *device.MediaProfile
		ctx      profileContext

		// Set when a Profiles element opens: its immediately following
		// child is the profile display name if that child is Name.
		pendingName bool
	)

	fail := func(err error) ([]*device.MediaProfile, error) {
		return nil, fmt.Errorf("malformed profiles response: %w", err)
	}

	d := newDecoder(raw)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return profiles, nil
		}
		if err != nil {
			return fail(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			firstChild := pendingName
			pendingName = false

			switch t.Name.Local {
			case "Profiles":
				profile = &device.MediaProfile{Token: attr(t, "token")}
				pendingName = true

			case "VideoEncoderConfiguration":
				if profile != nil {
					profile.VideoEncoder.Token = attr(t, "token")
				}
				ctx = ctxVideo
			case "AudioEncoderConfiguration":
				if profile != nil {
					profile.AudioEncoder.Token = attr(t, "token")
				}
				ctx = ctxAudio
			case "VideoSourceConfiguration":
				if profile != nil {
					profile.VideoSource.Token = attr(t, "token")
				}
				ctx = ctxVideoSource
			case "AudioSourceConfiguration":
				if profile != nil {
					profile.AudioSource.Token = attr(t, "token")
				}
				ctx = ctxAudioSource
			case "PTZConfiguration":
				if profile != nil {
					profile.PTZ.Token = attr(t, "token")
				}
				ctx = ctxPTZ

			case "Name":
				if profile == nil {
					continue
				}
				switch {
				case firstChild:
					text, err := textOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.Name = text
				case ctx == ctxVideoSource:
					text, err := textOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.VideoSource.Name = text
				case ctx == ctxAudioSource:
					text, err := textOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.AudioSource.Name = text
				}

			case "SourceToken":
				if profile == nil {
					continue
				}
				switch ctx {
				case ctxVideoSource:
					text, err := textOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.VideoSource.SourceToken = text
				case ctxAudioSource:
					text, err := textOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.AudioSource.SourceToken = text
				}

			case "Bounds":
				if profile != nil && ctx == ctxVideoSource {
					profile.VideoSource.Bounds = device.Bounds{
						X:      intAttr(t, "x"),
						Y:      intAttr(t, "y"),
						Width:  intAttr(t, "width"),
						Height: intAttr(t, "height"),
					}
				}

			case "Width":
				if profile != nil && ctx == ctxVideo {
					n, err := intOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.VideoEncoder.Width = n
				}
			case "Height":
				if profile != nil && ctx == ctxVideo {
					n, err := intOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.VideoEncoder.Height = n
				}
			case "FrameRateLimit":
				if profile != nil && ctx == ctxVideo {
					n, err := intOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.VideoEncoder.FrameRate = n
				}

			case "Encoding":
				if profile == nil {
					continue
				}
				switch ctx {
				case ctxVideo:
					text, err := textOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.VideoEncoder.Encoding = text
				case ctxAudio:
					text, err := textOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.AudioEncoder.Encoding = text
				}

			case "Bitrate":
				if profile != nil && ctx == ctxAudio {
					n, err := intOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.AudioEncoder.Bitrate = n
				}
			case "SampleRate":
				if profile != nil && ctx == ctxAudio {
					n, err := intOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.AudioEncoder.SampleRate = n
				}

			case "NodeToken":
				if profile != nil && ctx == ctxPTZ {
					text, err := textOf(d, t)
					if err != nil {
						return fail(err)
					}
					profile.PTZ.NodeToken = text
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "Profiles":
				if profile != nil {
					profiles = append(profiles, profile)
					profile = nil
				}
			case "VideoEncoderConfiguration", "AudioEncoderConfiguration",
				"VideoSourceConfiguration", "AudioSourceConfiguration",
				"PTZConfiguration":
				ctx = ctxNone
			}
		}
	}
}
