package urls

// Documentation URLs for guides and troubleshooting
// All URLs point to the documentation site at https://muldr.github.io/camscan/

// Troubleshooting provides solutions to common discovery problems:
// cameras not answering probes, firewalls dropping multicast, and
// devices on a different subnet.
const Troubleshooting = "https://muldr.github.io/camscan/troubleshooting/"

// CredentialsGuide explains how camera accounts are resolved during
// enrichment and how to configure per-manufacturer overrides.
const CredentialsGuide = "https://muldr.github.io/camscan/guides/credentials/"

// MulticastNetworking covers the network requirements for WS-Discovery
// and mDNS: IGMP snooping, VLAN boundaries, and interface selection.
const MulticastNetworking = "https://muldr.github.io/camscan/guides/multicast/"

// GettingStarted is the quick start guide for new users.
const GettingStarted = "https://muldr.github.io/camscan/getting-started/"
