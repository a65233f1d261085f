package metadata

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/muldr/camscan/internal/device"
	"github.com/muldr/camscan/internal/logging"
	"github.com/muldr/camscan/internal/protocol"
	"github.com/muldr/camscan/internal/soap"
)

// DefaultRequestTimeout bounds each individual SOAP request to a device.
const DefaultRequestTimeout = 10 * time.Second

// Fetcher enriches a probed device with metadata over authenticated SOAP.
// A single Fetcher is shared by all per-device pipelines; it holds no
// per-device state.
type Fetcher struct {
	client    *Client
	templater *soap.Templater
	logger    *zap.Logger
}

// NewFetcher returns a Fetcher posting through client. A nil client gets
// the default request timeout.
func NewFetcher(client *Client) *Fetcher {
	if client == nil {
		client = NewClient(DefaultRequestTimeout)
	}
	return &Fetcher{
		client:    client,
		templater: soap.NewTemplater(),
		logger:    logging.GetLogger().Named("metadata"),
	}
}

// Fetch runs the metadata pipeline against dev in place: capabilities,
// device information, network interfaces, media profiles, then one stream
// URI per profile. Requests run strictly in that order and the first
// failure aborts the remaining steps, so callers get exactly one outcome
// per device. Credentials must already be set on dev.
func (f *Fetcher) Fetch(ctx context.Context, dev *device.Device) error {
	steps := []struct {
		name string
		run  func(context.Context, *device.Device) error
	}{
		{"GetCapabilities", f.fetchCapabilities},
		{"GetDeviceInformation", f.fetchDeviceInformation},
		{"GetNetworkInterfaces", f.fetchNetworkInterfaces},
		{"GetProfiles", f.fetchProfiles},
		{"GetStreamUri", f.fetchStreamURIs},
	}

	for _, step := range steps {
		if err := step.run(ctx, dev); err != nil {
			f.logger.Debug("metadata step failed",
				zap.String("address", dev.Address),
				zap.String("step", step.name),
				zap.Error(err))
			return withStep(err, step.name)
		}
	}

	f.logger.Info("device metadata complete",
		zap.String("address", dev.Address),
		zap.String("manufacturer", dev.Manufacturer),
		zap.String("model", dev.Model),
		zap.Int("profiles", len(dev.Profiles)))
	return nil
}

// fetchCapabilities discovers the device's service endpoints. This is the
// only unauthenticated step.
func (f *Fetcher) fetchCapabilities(ctx context.Context, dev *device.Device) error {
	body, err := f.templater.Render(soap.TemplateGetCapabilities)
	if err != nil {
		return NewDigestError("rendering capabilities request", err)
	}
	resp, err := f.client.Post(ctx, dev.ServiceURL, body)
	if err != nil {
		return err
	}
	if err := protocol.ParseCapabilities(resp, dev); err != nil {
		return NewParseError("parsing capabilities", err)
	}
	return nil
}

func (f *Fetcher) fetchDeviceInformation(ctx context.Context, dev *device.Device) error {
	resp, err := f.postAuthenticated(ctx, dev, dev.ServiceURL, soap.TemplateGetDeviceInformation)
	if err != nil {
		return err
	}
	if err := protocol.ParseDeviceInformation(resp, dev); err != nil {
		return NewParseError("parsing device information", err)
	}
	return nil
}

func (f *Fetcher) fetchNetworkInterfaces(ctx context.Context, dev *device.Device) error {
	resp, err := f.postAuthenticated(ctx, dev, dev.ServiceURL, soap.TemplateGetNetworkInterfaces)
	if err != nil {
		return err
	}
	if err := protocol.ParseNetworkInterfaces(resp, dev); err != nil {
		return NewParseError("parsing network interfaces", err)
	}
	return nil
}

// fetchProfiles queries the media service reported by capabilities.
func (f *Fetcher) fetchProfiles(ctx context.Context, dev *device.Device) error {
	if dev.MediaURL == "" {
		return NewNetworkError("device reported no media service", nil)
	}
	resp, err := f.postAuthenticated(ctx, dev, dev.MediaURL, soap.TemplateGetProfiles)
	if err != nil {
		return err
	}
	profiles, err := protocol.ParseMediaProfiles(resp)
	if err != nil {
		return NewParseError("parsing media profiles", err)
	}
	dev.SetProfiles(profiles)
	return nil
}

// fetchStreamURIs resolves one RTSP stream URI per media profile.
func (f *Fetcher) fetchStreamURIs(ctx context.Context, dev *device.Device) error {
	for _, profile := range dev.Profiles {
		resp, err := f.postAuthenticated(ctx, dev, dev.MediaURL, soap.TemplateGetStreamURI, profile.Token)
		if err != nil {
			return err
		}
		uri, err := protocol.ParseStreamURI(resp)
		if err != nil {
			return NewParseError("parsing stream URI", err)
		}
		profile.StreamURI = uri
	}
	return nil
}

// FetchSnapshotURI resolves the JPEG snapshot URI for one profile. Optional
// enrichment; failures do not disturb the device's pipeline outcome.
func (f *Fetcher) FetchSnapshotURI(ctx context.Context, dev *device.Device, profile *device.MediaProfile) (string, error) {
	resp, err := f.postAuthenticated(ctx, dev, dev.MediaURL, soap.TemplateGetSnapshotURI, profile.Token)
	if err != nil {
		return "", withStep(err, "GetSnapshotUri")
	}
	uri, err := protocol.ParseSnapshotURI(resp)
	if err != nil {
		return "", withStep(NewParseError("parsing snapshot URI", err), "GetSnapshotUri")
	}
	return uri, nil
}

// FetchImageSettings reads imaging settings for the video source behind
// profile into dev. Optional enrichment.
func (f *Fetcher) FetchImageSettings(ctx context.Context, dev *device.Device, profile *device.MediaProfile) error {
	if dev.ImagingURL == "" {
		return withStep(NewNetworkError("device reported no imaging service", nil), "GetImagingSettings")
	}
	if profile.VideoSource.SourceToken == "" {
		return withStep(NewParseError("profile has no video source", nil), "GetImagingSettings")
	}
	resp, err := f.postAuthenticated(ctx, dev, dev.ImagingURL, soap.TemplateGetImagingSettings, profile.VideoSource.SourceToken)
	if err != nil {
		return withStep(err, "GetImagingSettings")
	}
	if err := protocol.ParseImagingSettings(resp, dev); err != nil {
		return withStep(NewParseError("parsing imaging settings", err), "GetImagingSettings")
	}
	return nil
}

// postAuthenticated renders an authenticated envelope with the device's
// credentials and posts it to serviceURL.
func (f *Fetcher) postAuthenticated(ctx context.Context, dev *device.Device, serviceURL, template string, extra ...string) (string, error) {
	body, err := f.templater.RenderAuthenticated(template, dev.Username, dev.Password, extra...)
	if err != nil {
		return "", NewDigestError("rendering "+template, err)
	}
	return f.client.Post(ctx, serviceURL, body)
}

// withStep annotates a DeviceError with the pipeline step that produced it.
func withStep(err error, step string) error {
	if devErr, ok := err.(*DeviceError); ok && devErr.Step == "" {
		devErr.Step = step
	}
	return err
}
