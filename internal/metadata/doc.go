// Package metadata enriches discovered cameras over SOAP.
//
// After discovery's probe phase yields a device service URL, a Fetcher runs
// a fixed request pipeline against the device: GetCapabilities (the one
// unauthenticated call), then GetDeviceInformation, GetNetworkInterfaces,
// GetProfiles, and one GetStreamUri per media profile, all carrying a
// WS-UsernameToken security header. The first failing step aborts the rest
// so every device resolves to exactly one outcome.
//
// Failures are typed DeviceErrors carrying the failing step, so callers can
// distinguish wrong credentials (HTTP 401/400) from unreachable hosts or
// malformed responses.
package metadata
