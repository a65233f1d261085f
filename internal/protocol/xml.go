package protocol

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// newDecoder returns a decoder over the raw response text.
func newDecoder(raw string) *xml.Decoder {
	return xml.NewDecoder(strings.NewReader(raw))
}

// textOf consumes the started element and returns its character data.
func textOf(d *xml.Decoder, start xml.StartElement) (string, error) {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return "", err
	}
	return s, nil
}

// intOf consumes the started element and returns its text as an int.
func intOf(d *xml.Decoder, start xml.StartElement) (int, error) {
	s, err := textOf(d, start)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("element %s: %w", start.Name.Local, err)
	}
	return n, nil
}

// floatOf consumes the started element and returns its text as a float64.
func floatOf(d *xml.Decoder, start xml.StartElement) (float64, error) {
	s, err := textOf(d, start)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("element %s: %w", start.Name.Local, err)
	}
	return f, nil
}

// nextStart advances to the first child start element of the current
// container. It returns ok=false if the container ends first.
func nextStart(d *xml.Decoder) (xml.StartElement, bool, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.StartElement{}, false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, true, nil
		case xml.EndElement:
			return xml.StartElement{}, false, nil
		}
	}
}

// attr returns the value of the named attribute, ignoring namespaces.
func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// intAttr returns the named attribute as an int, or 0 if absent or
// unparseable.
func intAttr(start xml.StartElement, name string) int {
	n, err := strconv.Atoi(attr(start, name))
	if err != nil {
		return 0
	}
	return n
}
