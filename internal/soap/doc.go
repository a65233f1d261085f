// Package soap builds ONVIF SOAP request bodies.
//
// Requests are rendered from embedded XML templates with positional
// placeholders. Authenticated requests carry a WS-UsernameToken security
// header whose password proof is a one-time digest:
//
//	Digest = base64( SHA1( base64decode(Nonce) ++ Created ++ Password ) )
//
// where Nonce is 32 random alphanumeric characters and Created is the
// current UTC time at second precision. A fresh digest is built for every
// authenticated request; digests are never reused.
//
// The package does not perform any network I/O; callers pass the rendered
// body to the metadata client.
package soap

// Template names for the ONVIF request set.
const (
	TemplateProbe                = "probe.xml"
	TemplateGetCapabilities      = "get_capabilities.xml"
	TemplateGetDeviceInformation = "get_device_information.xml"
	TemplateGetNetworkInterfaces = "get_network_interfaces.xml"
	TemplateGetProfiles          = "get_profiles.xml"
	TemplateGetStreamURI         = "get_stream_uri.xml"
	TemplateGetSnapshotURI       = "get_snapshot_uri.xml"
	TemplateGetImagingSettings   = "get_imaging_settings.xml"
)
