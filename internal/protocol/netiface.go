package protocol

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/muldr/camscan/internal/device"
)

// ipContext tracks which address-family subtree the interface parser is
// inside. PrefixLength is only captured under IPv4; IPv6 subtrees are
// recognized so their PrefixLength elements are skipped, but nothing from
// them is captured.
type ipContext int

const (
	ipNone ipContext = iota
	ipV4
	ipV6
)

// ParseNetworkInterfaces reads the first interface block of a
// GetNetworkInterfaces response into the device: the interface token
// attribute, the MTU, and the IPv4 prefix length.
func ParseNetworkInterfaces(raw string, dev *device.Device) error {
	ni := dev.NetworkInterface
	if ni == nil {
		ni = &device.NetworkInterface{}
		dev.NetworkInterface = ni
	}

	ctx := ipNone
	inBlock := false

	d := newDecoder(raw)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed network interfaces response: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "NetworkInterfaces":
				inBlock = true
				ni.Token = attr(t, "token")
			case "MTU":
				if !inBlock {
					continue
				}
				mtu, err := intOf(d, t)
				if err != nil {
					return fmt.Errorf("malformed network interfaces response: %w", err)
				}
				ni.MTU = mtu
			case "IPv4":
				ctx = ipV4
			case "IPv6":
				ctx = ipV6
			case "PrefixLength":
				if ctx != ipV4 || !inBlock {
					continue
				}
				plen, err := intOf(d, t)
				if err != nil {
					return fmt.Errorf("malformed network interfaces response: %w", err)
				}
				ni.IPv4PrefixLen = plen
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "NetworkInterfaces":
				// Only the first interface block is captured.
				return nil
			case "IPv4", "IPv6":
				ctx = ipNone
			}
		}
	}
}
