// ABOUTME: Tests for configuration loading and base URL resolution
// ABOUTME: Covers env parsing, validation, and location fallbacks

package config

import (
	"net"
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RefreshInterval != 840 {
		t.Errorf("expected default refresh interval 840, got %d", cfg.RefreshInterval)
	}
}

func TestLoad_RefreshIntervalTooLow(t *testing.T) {
	os.Clearenv()
	os.Setenv("SKUMAP_REFRESH_INTERVAL", "10")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error for refresh interval under 60s, got nil")
	}
}

func TestLoad_AddsScheme(t *testing.T) {
	os.Clearenv()
	os.Setenv("SKUMAP_API_URL", "backend.internal:8000")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://backend.internal:8000" {
		t.Errorf("expected scheme added, got %s", cfg.APIURL)
	}
}

func TestBaseURL_ExplicitWins(t *testing.T) {
	cfg := &Config{
		APIURL:   "http://explicit:8000",
		LocalURL: "http://local:8000",
		LANURL:   "http://lan:8000",
	}

	for _, loc := range []NetworkLocation{LocationLoopback, LocationPrivateLAN, LocationPublic} {
		if got := cfg.BaseURL(loc); got != "http://explicit:8000" {
			t.Errorf("location %d: expected explicit URL, got %s", loc, got)
		}
	}
}

func TestBaseURL_LocationSpecific(t *testing.T) {
	cfg := &Config{
		LocalURL:  "http://local:8000",
		LANURL:    "http://lan:8000",
		GlobalURL: "http://global:8000",
	}

	if got := cfg.BaseURL(LocationLoopback); got != "http://local:8000" {
		t.Errorf("expected local URL, got %s", got)
	}
	if got := cfg.BaseURL(LocationPrivateLAN); got != "http://lan:8000" {
		t.Errorf("expected LAN URL, got %s", got)
	}
	if got := cfg.BaseURL(LocationPublic); got != "http://global:8000" {
		t.Errorf("expected global URL, got %s", got)
	}
}

func TestBaseURL_FallbackChain(t *testing.T) {
	cfg := &Config{GlobalURL: "http://global:8000"}

	// No local URL configured; any configured URL serves
	if got := cfg.BaseURL(LocationLoopback); got != "http://global:8000" {
		t.Errorf("expected fallback to global URL, got %s", got)
	}

	empty := &Config{}
	if got := empty.BaseURL(LocationPublic); got != DefaultAPIURL {
		t.Errorf("expected default URL, got %s", got)
	}
}

func TestIsPrivateLAN(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"192.168.1.10", true},
		{"10.0.0.5", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"8.8.8.8", false},
		{"192.169.0.1", false},
	}

	for _, tt := range tests {
		ip := net.ParseIP(tt.ip).To4()
		if got := isPrivateLAN(ip); got != tt.want {
			t.Errorf("isPrivateLAN(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}
