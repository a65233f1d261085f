// Package config provides user configuration management for camscan.
//
// This package manages a YAML-based configuration file that stores
// user-defined metadata for discovered cameras (nicknames, last known
// addresses), discovery preferences, and camera account overrides. The
// configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/camscan/config.yaml or $HOME/.config/camscan/config.yaml
//   - macOS: $HOME/.config/camscan/config.yaml
//   - Windows: %LOCALAPPDATA%\camscan\config.yaml
//
// # Security
//
// The credentials section holds camera account passwords (typically
// factory-default LAN accounts), so the file is written with user-only
// permissions (0600) and the directory with 0700.
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Layer account overrides onto the credential store
//	store := credentials.NewStore()
//	registry.ApplyCredentials(store)
//
//	// Record a sighting and save atomically
//	registry.RecordSighting(dev.UUID, dev.Address, dev.Manufacturer, dev.Model)
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
