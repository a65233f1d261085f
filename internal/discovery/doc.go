// Package discovery locates ONVIF cameras on the local network.
//
// The primary mechanism is WS-Discovery: the Engine sends one SOAP probe
// to UDP port 3702 — preferring the local subnet's broadcast address, with
// the 239.255.255.250 multicast group as fallback — and listens for
// ProbeMatch responses until the session timeout elapses. Each unique responder is handed to the
// metadata pipeline on its own goroutine, so slow or unreachable cameras
// never stall the listen loop. Session lifecycle and per-device outcomes
// are reported through an EventSink.
//
// # Discovery Process
//
//  1. Open a UDP socket and send one WS-Discovery probe to the subnet
//     broadcast address (multicast group when none can be derived)
//  2. Listen for ProbeMatch datagrams until the timeout
//  3. Parse each response for the device service URL, endpoint UUID,
//     and manufacturer scope
//  4. Deduplicate responders by UUID and resolve their credentials
//  5. Dispatch one metadata pipeline goroutine per device
//
// # Usage Example
//
//	engine := discovery.NewEngine(discovery.DefaultConfig(),
//	    credentials.NewStore(), metadata.NewFetcher(nil), sink)
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// A secondary Scanner sweeps mDNS for cameras that advertise an RTSP
// service, catching devices whose WS-Discovery responder is disabled.
//
// # Network Requirements
//
//   - Multicast support on the network interface
//   - Cameras must be on the same local network segment
//   - Firewall must allow WS-Discovery (UDP port 3702)
package discovery
