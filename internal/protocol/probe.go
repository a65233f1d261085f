package protocol

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muldr/camscan/internal/device"
)

// scopeNamePrefix marks the manufacturer scope advertised in probe
// matches, e.g. "onvif://www.onvif.org/name/Hikvision%20IPC".
const scopeNamePrefix = "onvif://www.onvif.org/name/"

// ParseProbeMatch extracts a device from a WS-Discovery probe-match body.
//
// Three elements are read wherever they appear in the document: XAddrs
// (first whitespace-separated token becomes the service URL, which derives
// the address), MessageID (stored verbatim as the stable identifier), and
// Scopes (mined for the manufacturer name). The caller must reject devices
// without a usable service URL and address.
func ParseProbeMatch(raw string) (*device.Device, error) {
	dev := &device.Device{DiscoveredAt: time.Now()}

	d := newDecoder(raw)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return dev, nil
		}
		if err != nil {
			return nil, fmt.Errorf("malformed probe match: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "XAddrs":
			text, err := textOf(d, start)
			if err != nil {
				return nil, fmt.Errorf("malformed probe match: %w", err)
			}
			if addrs := strings.Fields(text); len(addrs) > 0 {
				dev.SetServiceURL(addrs[0])
			}
		case "MessageID":
			text, err := textOf(d, start)
			if err != nil {
				return nil, fmt.Errorf("malformed probe match: %w", err)
			}
			dev.UUID = text
		case "Scopes":
			text, err := textOf(d, start)
			if err != nil {
				return nil, fmt.Errorf("malformed probe match: %w", err)
			}
			if name := manufacturerFromScopes(text); name != "" {
				dev.Manufacturer = name
			}
		}
	}
}

// manufacturerFromScopes extracts the manufacturer name from the scope
// list: the substring after the name-scope prefix up to the next space or
// end of string, with %20 escapes decoded to spaces. Returns "" when no
// name scope is present.
func manufacturerFromScopes(scopes string) string {
	idx := strings.Index(scopes, scopeNamePrefix)
	if idx < 0 {
		return ""
	}
	name := scopes[idx+len(scopeNamePrefix):]
	if end := strings.Index(name, " "); end >= 0 {
		name = name[:end]
	}
	return strings.ReplaceAll(name, "%20", " ")
}
