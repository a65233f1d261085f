package protocol

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/muldr/camscan/internal/device"
)

// ParseImagingSettings reads a GetImagingSettings response into the
// device's image settings. The exposure scalars are only captured inside
// the Exposure block; Brightness, ColorSaturation and Contrast are
// top-level in this response shape.
func ParseImagingSettings(raw string, dev *device.Device) error {
	setting := &device.ImageSetting{}
	var exposure *device.Exposure

	d := newDecoder(raw)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			dev.ImageSetting = setting
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed imaging settings response: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Brightness":
				f, err := floatOf(d, t)
				if err != nil {
					return fmt.Errorf("malformed imaging settings response: %w", err)
				}
				setting.Brightness = f
			case "ColorSaturation":
				f, err := floatOf(d, t)
				if err != nil {
					return fmt.Errorf("malformed imaging settings response: %w", err)
				}
				setting.ColorSaturation = f
			case "Contrast":
				f, err := floatOf(d, t)
				if err != nil {
					return fmt.Errorf("malformed imaging settings response: %w", err)
				}
				setting.Contrast = f
			case "Exposure":
				exposure = &device.Exposure{}
				setting.Exposure = exposure
			case "Mode":
				if exposure == nil {
					continue
				}
				text, err := textOf(d, t)
				if err != nil {
					return fmt.Errorf("malformed imaging settings response: %w", err)
				}
				exposure.Mode = text
			case "MinExposureTime":
				if exposure == nil {
					continue
				}
				n, err := intOf(d, t)
				if err != nil {
					return fmt.Errorf("malformed imaging settings response: %w", err)
				}
				exposure.MinExposureTime = n
			case "MaxExposureTime":
				if exposure == nil {
					continue
				}
				n, err := intOf(d, t)
				if err != nil {
					return fmt.Errorf("malformed imaging settings response: %w", err)
				}
				exposure.MaxExposureTime = n
			case "ExposureTime":
				if exposure == nil {
					continue
				}
				f, err := floatOf(d, t)
				if err != nil {
					return fmt.Errorf("malformed imaging settings response: %w", err)
				}
				exposure.ExposureTime = f
			}
		case xml.EndElement:
			if t.Name.Local == "Exposure" {
				exposure = nil
			}
		}
	}
}
