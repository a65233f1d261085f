package config

import (
	"time"

	"github.com/muldr/camscan/internal/credentials"
)

// Registry represents the entire user configuration file.
// This stores user-defined metadata for cameras and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Cameras     map[string]*Camera `yaml:"cameras,omitempty"` // Keyed by endpoint UUID
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Camera represents user-defined metadata for a single camera.
// This is keyed by the camera's endpoint UUID in the Registry.
type Camera struct {
	Nickname     string    `yaml:"nickname,omitempty"`     // User-friendly name
	LastAddress  string    `yaml:"last_address,omitempty"` // Last known host[:port]
	LastSeen     time.Time `yaml:"last_seen,omitempty"`    // Last discovery time
	Manufacturer string    `yaml:"manufacturer,omitempty"` // From last enrichment
	Model        string    `yaml:"model,omitempty"`        // From last enrichment
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DiscoverTimeoutMS int              `yaml:"discover_timeout_ms"`         // Probe listen window in milliseconds
	MulticastAddress  string           `yaml:"multicast_address,omitempty"` // Override for the WS-Discovery group
	Credentials       *CredentialPrefs `yaml:"credentials,omitempty"`       // Camera account overrides
}

// CredentialPrefs holds camera account overrides. These are factory-default
// style accounts for LAN cameras, stored in the user-only config file.
type CredentialPrefs struct {
	Default       *AccountPrefs            `yaml:"default,omitempty"`       // Used when no manufacturer matches
	Manufacturers map[string]*AccountPrefs `yaml:"manufacturers,omitempty"` // Keyed by manufacturer keyword
}

// AccountPrefs is one username/password pair.
type AccountPrefs struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Cameras: make(map[string]*Camera),
		Preferences: &Preferences{
			DiscoverTimeoutMS: 5000,
		},
	}
}

// DiscoverTimeout returns the configured listen window as a duration,
// falling back to 5 seconds for zero or negative values.
func (r *Registry) DiscoverTimeout() time.Duration {
	if r.Preferences == nil || r.Preferences.DiscoverTimeoutMS <= 0 {
		return 5000 * time.Millisecond
	}
	return time.Duration(r.Preferences.DiscoverTimeoutMS) * time.Millisecond
}

// GetCamera retrieves camera metadata by endpoint UUID.
// Returns nil if the camera doesn't exist in the registry.
func (r *Registry) GetCamera(uuid string) *Camera {
	return r.Cameras[uuid]
}

// EnsureCamera ensures a camera entry exists in the registry.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureCamera(uuid string) *Camera {
	if r.Cameras == nil {
		r.Cameras = make(map[string]*Camera)
	}

	if camera, exists := r.Cameras[uuid]; exists {
		return camera
	}

	camera := &Camera{}
	r.Cameras[uuid] = camera
	return camera
}

// RecordSighting updates the last seen timestamp and identity fields for
// a camera after a discovery session.
func (r *Registry) RecordSighting(uuid, address, manufacturer, model string) {
	camera := r.EnsureCamera(uuid)
	camera.LastSeen = time.Now()
	camera.LastAddress = address
	if manufacturer != "" {
		camera.Manufacturer = manufacturer
	}
	if model != "" {
		camera.Model = model
	}
}

// SetCameraNickname sets a user-friendly nickname for a camera.
func (r *Registry) SetCameraNickname(uuid, nickname string) {
	camera := r.EnsureCamera(uuid)
	camera.Nickname = nickname
}

// SetCredential records a manufacturer account override.
func (r *Registry) SetCredential(manufacturer, username, password string) {
	if r.Preferences == nil {
		r.Preferences = &Preferences{DiscoverTimeoutMS: 5000}
	}
	if r.Preferences.Credentials == nil {
		r.Preferences.Credentials = &CredentialPrefs{}
	}
	prefs := r.Preferences.Credentials
	if manufacturer == "" {
		prefs.Default = &AccountPrefs{Username: username, Password: password}
		return
	}
	if prefs.Manufacturers == nil {
		prefs.Manufacturers = make(map[string]*AccountPrefs)
	}
	prefs.Manufacturers[manufacturer] = &AccountPrefs{Username: username, Password: password}
}

// ApplyCredentials layers the registry's account overrides onto store.
// Built-in defaults stay in place for manufacturers the config is silent
// about.
func (r *Registry) ApplyCredentials(store *credentials.Store) {
	if r.Preferences == nil || r.Preferences.Credentials == nil {
		return
	}
	prefs := r.Preferences.Credentials
	for manufacturer, account := range prefs.Manufacturers {
		if account == nil {
			continue
		}
		store.Set(manufacturer, account.Username, account.Password)
	}
	if prefs.Default != nil {
		store.SetFallback(prefs.Default.Username, prefs.Default.Password)
	}
}
