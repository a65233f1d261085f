package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// RTSPServiceType is the mDNS service type many IP cameras advertise
	// alongside (or instead of) their WS-Discovery responder.
	RTSPServiceType = "_rtsp._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for an mDNS sweep
	DefaultScanTimeout = 10 * time.Second

	// DefaultRTSPPort is assumed when an advertisement omits the port
	DefaultRTSPPort = 554
)

// MDNSCamera is a camera found by the mDNS sweep. It carries only what
// the advertisement exposes; the WS-Discovery path is needed for full
// metadata.
type MDNSCamera struct {
	// Name is the advertised service instance name
	Name string

	// Hostname is the mDNS hostname (e.g., "ipcam-7ab2.local.")
	Hostname string

	// IP is the IPv4 address (IPv6 when no IPv4 is advertised)
	IP string

	// Port is the RTSP port (typically 554)
	Port int

	// Metadata contains the advertisement's TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the camera was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the camera
func (c *MDNSCamera) String() string {
	return fmt.Sprintf("Camera %s (%s) at %s:%d", c.Name, c.Hostname, c.IP, c.Port)
}

// RTSPBase returns the camera's RTSP base URL
func (c *MDNSCamera) RTSPBase() string {
	return fmt.Sprintf("rtsp://%s:%d", c.IP, c.Port)
}

// Scanner handles the mDNS camera sweep
type Scanner struct {
	// Timeout is the maximum time to wait for advertisements
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForCameras sweeps the local network for RTSP advertisements
func (s *Scanner) ScanForCameras() ([]*MDNSCamera, error) {
	return s.ScanForCamerasWithContext(context.Background())
}

// ScanForCamerasWithContext sweeps with a custom context
func (s *Scanner) ScanForCamerasWithContext(ctx context.Context) ([]*MDNSCamera, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	cameras := make([]*MDNSCamera, 0)
	done := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Collect entries until the resolver closes the channel
	go func() {
		defer close(done)
		for entry := range entries {
			camera := parseServiceEntry(entry)
			if camera != nil {
				cameras = append(cameras, camera)
			}
		}
	}()

	err = resolver.Browse(ctx, RTSPServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done

	return cameras, nil
}

// parseServiceEntry converts a zeroconf service entry to an MDNSCamera
// Returns nil if the entry carries no usable address
func parseServiceEntry(entry *zeroconf.ServiceEntry) *MDNSCamera {
	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	// Get port (default to 554 if not specified)
	port := entry.Port
	if port == 0 {
		port = DefaultRTSPPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &MDNSCamera{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForCameras is a convenience function to sweep with a custom timeout
func ScanForCameras(timeout time.Duration) ([]*MDNSCamera, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForCameras()
}
