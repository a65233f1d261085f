// Package protocol parses ONVIF response documents.
//
// Each response shape has its own streaming, single-pass parser built on
// encoding/xml. Parsers match elements by local name only (devices differ
// in namespace prefixes) and disambiguate elements that share a local name
// across sibling subtrees — Width, Name, Encoding, SourceToken — with an
// explicit context value that is entered on a container start tag and
// cleared on its matching end tag.
//
// All parsers fail on malformed XML and tolerate missing optional
// elements by leaving the corresponding field at its zero value.
package protocol
