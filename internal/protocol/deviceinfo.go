package protocol

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/muldr/camscan/internal/device"
)

// ParseDeviceInformation reads the four identity scalars from a
// GetDeviceInformation response into the device. No context tracking is
// needed; the element names are unique in this response shape.
func ParseDeviceInformation(raw string, dev *device.Device) error {
	d := newDecoder(raw)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed device information response: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		var target *string
		switch start.Name.Local {
		case "Manufacturer":
			target = &dev.Manufacturer
		case "Model":
			target = &dev.Model
		case "SerialNumber":
			target = &dev.SerialNumber
		case "FirmwareVersion":
			target = &dev.FirmwareVersion
		default:
			continue
		}

		text, err := textOf(d, start)
		if err != nil {
			return fmt.Errorf("malformed device information response: %w", err)
		}
		*target = text
	}
}
