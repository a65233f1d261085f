package discovery

import "time"

const (
	// WSDiscoveryPort is the well-known WS-Discovery UDP port.
	WSDiscoveryPort = 3702

	// DefaultMulticastAddress is the WS-Discovery IPv4 multicast group.
	DefaultMulticastAddress = "239.255.255.250"

	// DefaultTimeout is how long a session listens for probe matches.
	DefaultTimeout = 5000 * time.Millisecond

	// maxDatagramSize bounds a single probe-match response.
	maxDatagramSize = 4096

	// readSlice is the per-read deadline inside the listen loop, so Stop
	// is noticed promptly without busy-waiting.
	readSlice = 500 * time.Millisecond
)

// Config controls one discovery engine. The zero value is not usable;
// call DefaultConfig and override fields as needed.
type Config struct {
	// MulticastAddress is the probe destination group. When left at
	// DefaultMulticastAddress the engine prefers the local subnet's
	// broadcast address and uses the group only as a fallback; any other
	// value is an explicit destination override.
	MulticastAddress string

	// Port is the probe destination UDP port.
	Port int

	// Timeout is the listen window after the probe is sent.
	Timeout time.Duration
}

// DefaultConfig returns the standard WS-Discovery settings.
func DefaultConfig() Config {
	return Config{
		MulticastAddress: DefaultMulticastAddress,
		Port:             WSDiscoveryPort,
		Timeout:          DefaultTimeout,
	}
}
