package protocol

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/muldr/camscan/internal/device"
)

// ParseCapabilities reads the five service endpoint URLs from a
// GetCapabilities response into the device. For each named service block
// the parser descends one tag and captures the following XAddr text.
func ParseCapabilities(raw string, dev *device.Device) error {
	d := newDecoder(raw)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed capabilities response: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		var target *string
		switch start.Name.Local {
		case "Media":
			target = &dev.MediaURL
		case "PTZ":
			target = &dev.PTZURL
		case "Imaging":
			target = &dev.ImagingURL
		case "Events":
			target = &dev.EventURL
		case "Analytics":
			target = &dev.AnalyticsURL
		default:
			continue
		}

		child, ok, err := nextStart(d)
		if err != nil {
			return fmt.Errorf("malformed capabilities response: %w", err)
		}
		if !ok || child.Name.Local != "XAddr" {
			continue
		}
		text, err := textOf(d, child)
		if err != nil {
			return fmt.Errorf("malformed capabilities response: %w", err)
		}
		*target = text
	}
}
