package device

import (
	"fmt"
	"strings"
	"time"
)

// Device represents a discovered ONVIF camera on the network.
//
// A Device is created nearly empty by the probe-response parser and is
// progressively filled in by the metadata pipeline. Once it has been
// dispatched to a pipeline, that pipeline is the sole writer until the
// device is surfaced through an outcome event.
type Device struct {
	// Username and Password are the resolved credentials for this device.
	// They are assigned by the discovery engine from the credential store
	// before the metadata pipeline runs.
	Username string
	Password string

	// Address is the host portion of the service URL (including port if
	// present, e.g. "10.0.0.5" or "10.0.0.5:8080"). It is always derived
	// from ServiceURL via SetServiceURL and never set independently.
	Address string

	// ServiceURL is the device-management endpoint from the probe match
	// (the first XAddrs token).
	ServiceURL string

	// UUID is the stable identifier from the probe match MessageID,
	// stored verbatim (e.g. "urn:uuid:1419d68a-1dd2-11b2-a105-...").
	UUID string

	// Identity fields from GetDeviceInformation. Manufacturer may already
	// be set earlier from the probe match scopes.
	Manufacturer    string
	Model           string
	SerialNumber    string
	FirmwareVersion string

	// Service endpoints from GetCapabilities.
	MediaURL     string
	PTZURL       string
	ImagingURL   string
	EventURL     string
	AnalyticsURL string

	// Profiles are the media profiles from GetProfiles, in document order.
	Profiles []*MediaProfile

	// NetworkInterface holds the first interface block from
	// GetNetworkInterfaces, if the call succeeded.
	NetworkInterface *NetworkInterface

	// ImageSetting holds imaging settings when fetched separately.
	ImageSetting *ImageSetting

	// DiscoveredAt is when the probe match was received.
	DiscoveredAt time.Time
}

// SetServiceURL stores the service URL and derives Address from it.
// The address is the substring between the scheme separator and the next
// path segment, so "http://10.0.0.5:8080/onvif/device_service" yields
// "10.0.0.5:8080".
func (d *Device) SetServiceURL(url string) {
	d.ServiceURL = url
	d.Address = hostOf(url)
}

// hostOf extracts the host (and optional port) from a URL-ish string.
// Returns "" if the string has no scheme separator.
func hostOf(url string) string {
	_, rest, ok := strings.Cut(url, "//")
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	return host
}

// SetProfiles replaces the profile list with the given profiles.
func (d *Device) SetProfiles(profiles []*MediaProfile) {
	d.Profiles = profiles
}

// SetCredentials assigns the account used for authenticated calls.
func (d *Device) SetCredentials(username, password string) {
	d.Username = username
	d.Password = password
}

// String returns a human-readable summary of the device.
func (d *Device) String() string {
	return fmt.Sprintf("ONVIF Device %s %s (%s) at %s", d.Manufacturer, d.Model, d.UUID, d.Address)
}

// NetworkInterface holds the subset of GetNetworkInterfaces that the
// pipeline captures: one interface token, its MTU, and the IPv4 prefix
// length. IPv6 blocks are recognized during parsing but not captured.
type NetworkInterface struct {
	Token         string
	MTU           int
	IPv4PrefixLen int
}

// ImageSetting holds imaging settings for a video source.
type ImageSetting struct {
	Brightness      float64
	ColorSaturation float64
	Contrast        float64
	Exposure        *Exposure
}

// Exposure holds the exposure block of an imaging settings response.
type Exposure struct {
	Mode            string
	MinExposureTime int
	MaxExposureTime int
	ExposureTime    float64
}
