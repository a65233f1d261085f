package protocol

import (
	"encoding/xml"
	"fmt"
	"io"
)

// ParseURI extracts the text of the first element with the given local
// name. Used for the single-URI response shapes: stream URI and snapshot
// URI responses carry a Uri element, upload responses an UploadUri.
func ParseURI(raw, tag string) (string, error) {
	var uri string

	d := newDecoder(raw)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return uri, nil
		}
		if err != nil {
			return "", fmt.Errorf("malformed uri response: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != tag {
			continue
		}

		text, err := textOf(d, start)
		if err != nil {
			return "", fmt.Errorf("malformed uri response: %w", err)
		}
		if uri == "" {
			uri = text
		}
	}
}

// ParseStreamURI extracts the RTSP stream URI from a GetStreamUri response.
func ParseStreamURI(raw string) (string, error) {
	return ParseURI(raw, "Uri")
}

// ParseSnapshotURI extracts the snapshot URI from a GetSnapshotUri response.
func ParseSnapshotURI(raw string) (string, error) {
	return ParseURI(raw, "Uri")
}

// ParseUploadURI extracts the upload URI from an upload-target response.
func ParseUploadURI(raw string) (string, error) {
	return ParseURI(raw, "UploadUri")
}
