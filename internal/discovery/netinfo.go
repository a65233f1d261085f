package discovery

import (
	"fmt"
	"net"
)

// BroadcastAddress returns the directed broadcast address of the first
// usable IPv4 interface, as a probe fallback for networks that filter the
// WS-Discovery multicast group.
func BroadcastAddress() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("listing interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipnet.IP.To4()
			if ip == nil {
				continue
			}
			mask := ipnet.Mask
			if len(mask) != net.IPv4len {
				continue
			}
			bcast := make(net.IP, net.IPv4len)
			for i := range bcast {
				bcast[i] = ip[i] | ^mask[i]
			}
			return bcast.String(), nil
		}
	}
	return "", fmt.Errorf("no usable IPv4 interface found")
}
