package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/muldr/camscan/internal/credentials"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	// Should not be empty
	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	// Should contain "camscan"
	if !strings.Contains(configDir, "camscan") {
		t.Errorf("GetConfigDir() = %v, should contain 'camscan'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	// Should end with config.yaml
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	t.Logf("Config path: %s", configPath)
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Cameras == nil {
		t.Error("NewRegistry().Cameras should not be nil")
	}

	if reg.Preferences == nil {
		t.Error("NewRegistry().Preferences should not be nil")
	}

	if reg.Preferences.DiscoverTimeoutMS != 5000 {
		t.Errorf("NewRegistry().Preferences.DiscoverTimeoutMS = %v, want 5000", reg.Preferences.DiscoverTimeoutMS)
	}
}

func TestDiscoverTimeout(t *testing.T) {
	tests := []struct {
		name string
		ms   int
		want time.Duration
	}{
		{"configured value", 2500, 2500 * time.Millisecond},
		{"zero falls back", 0, 5 * time.Second},
		{"negative falls back", -1, 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			reg.Preferences.DiscoverTimeoutMS = tt.ms
			if got := reg.DiscoverTimeout(); got != tt.want {
				t.Errorf("DiscoverTimeout() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("nil preferences fall back", func(t *testing.T) {
		reg := &Registry{Version: 1}
		if got := reg.DiscoverTimeout(); got != 5*time.Second {
			t.Errorf("DiscoverTimeout() = %v, want 5s", got)
		}
	})
}

func TestRegistryEnsureCamera(t *testing.T) {
	reg := NewRegistry()

	// First call should create the entry
	camera1 := reg.EnsureCamera("urn:uuid:cam-1")
	if camera1 == nil {
		t.Fatal("EnsureCamera() returned nil")
	}

	// Second call should return same entry
	camera2 := reg.EnsureCamera("urn:uuid:cam-1")
	if camera1 != camera2 {
		t.Error("EnsureCamera() should return same instance for same UUID")
	}

	// Different UUID should create new entry
	camera3 := reg.EnsureCamera("urn:uuid:cam-2")
	if camera1 == camera3 {
		t.Error("EnsureCamera() should create new instance for different UUID")
	}
}

func TestRegistryRecordSighting(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.RecordSighting("urn:uuid:cam-1", "192.168.1.100", "Hikvision", "DS-2CD2085")
	after := time.Now()

	camera := reg.GetCamera("urn:uuid:cam-1")
	if camera == nil {
		t.Fatal("Camera should exist after RecordSighting()")
	}

	if camera.LastAddress != "192.168.1.100" {
		t.Errorf("LastAddress = %v, want 192.168.1.100", camera.LastAddress)
	}
	if camera.Manufacturer != "Hikvision" || camera.Model != "DS-2CD2085" {
		t.Errorf("identity = %q/%q", camera.Manufacturer, camera.Model)
	}

	if camera.LastSeen.Before(before) || camera.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", camera.LastSeen, before, after)
	}

	// Empty identity fields keep the previous values.
	reg.RecordSighting("urn:uuid:cam-1", "192.168.1.101", "", "")
	camera = reg.GetCamera("urn:uuid:cam-1")
	if camera.LastAddress != "192.168.1.101" {
		t.Errorf("LastAddress = %v, want updated address", camera.LastAddress)
	}
	if camera.Manufacturer != "Hikvision" {
		t.Errorf("Manufacturer = %v, want previous value kept", camera.Manufacturer)
	}
}

func TestRegistrySetCameraNickname(t *testing.T) {
	reg := NewRegistry()

	reg.SetCameraNickname("urn:uuid:cam-1", "Front Door")

	camera := reg.GetCamera("urn:uuid:cam-1")
	if camera == nil {
		t.Fatal("Camera should exist after SetCameraNickname()")
	}

	if camera.Nickname != "Front Door" {
		t.Errorf("Nickname = %v, want 'Front Door'", camera.Nickname)
	}
}

func TestRegistrySetCredential(t *testing.T) {
	reg := NewRegistry()

	reg.SetCredential("axis", "root", "pass")
	reg.SetCredential("", "admin", "fallback")

	prefs := reg.Preferences.Credentials
	if prefs == nil {
		t.Fatal("Credentials should exist after SetCredential()")
	}
	if account := prefs.Manufacturers["axis"]; account == nil || account.Username != "root" {
		t.Errorf("manufacturer override = %+v", account)
	}
	if prefs.Default == nil || prefs.Default.Password != "fallback" {
		t.Errorf("default override = %+v", prefs.Default)
	}
}

func TestRegistryApplyCredentials(t *testing.T) {
	reg := NewRegistry()
	reg.SetCredential("axis", "root", "pass")
	reg.SetCredential("hikvision", "admin", "overridden")
	reg.SetCredential("", "admin", "fallback")

	store := credentials.NewStore()
	reg.ApplyCredentials(store)

	if account := store.Lookup("AXIS P1448"); account.Username != "root" || account.Password != "pass" {
		t.Errorf("axis lookup = %+v", account)
	}
	// Config overrides the built-in seed.
	if account := store.Lookup("HIKVISION"); account.Password != "overridden" {
		t.Errorf("hikvision lookup = %+v", account)
	}
	if account := store.Lookup("Unknown Vendor"); account.Password != "fallback" {
		t.Errorf("fallback lookup = %+v", account)
	}

	// A registry without overrides leaves the store untouched.
	fresh := credentials.NewStore()
	NewRegistry().ApplyCredentials(fresh)
	if account := fresh.Lookup("HIKVISION"); account.Password != "qwer123456" {
		t.Errorf("untouched store lookup = %+v", account)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "camscan-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	testConfigPath := filepath.Join(tmpDir, "config.yaml")

	reg := NewRegistry()
	reg.SetCameraNickname("urn:uuid:cam-1", "Front Door")
	reg.RecordSighting("urn:uuid:cam-1", "192.168.1.100", "Hikvision", "DS-2CD2085")
	reg.SetCredential("axis", "root", "pass")

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("Failed to marshal registry: %v", err)
	}
	if err := os.WriteFile(testConfigPath, data, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	raw, err := os.ReadFile(testConfigPath)
	if err != nil {
		t.Fatalf("Failed to read test config: %v", err)
	}
	var loaded Registry
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("Failed to parse test config: %v", err)
	}

	camera := loaded.GetCamera("urn:uuid:cam-1")
	if camera == nil {
		t.Fatal("Camera should exist in loaded registry")
	}
	if camera.Nickname != "Front Door" {
		t.Errorf("Loaded nickname = %v, want 'Front Door'", camera.Nickname)
	}
	if camera.LastAddress != "192.168.1.100" {
		t.Errorf("Loaded address = %v", camera.LastAddress)
	}
	if account := loaded.Preferences.Credentials.Manufacturers["axis"]; account == nil || account.Password != "pass" {
		t.Errorf("Loaded credential override = %+v", account)
	}
}

// Benchmark tests

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkEnsureCamera(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureCamera("urn:uuid:cam-1")
	}
}
