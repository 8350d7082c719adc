// ABOUTME: Configuration loader for the SKU mapping console
// ABOUTME: Loads settings from environment variables and picks the API base URL by network location

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is used when no URL is configured at all
const DefaultAPIURL = "http://localhost:8000"

type Config struct {
	// API base URLs per network location
	APIURL    string // explicit override, wins over everything
	LocalURL  string // loopback-only machines
	LANURL    string // private LAN (192.168.x.x, 10.x.x.x, 172.16-31.x.x)
	GlobalURL string // everything else

	// Session
	RefreshInterval int // seconds between background token refreshes (default 840 = 14 min)
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() (*Config, error) {
	// Missing .env is the normal case, not an error
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:    ensureScheme(os.Getenv("SKUMAP_API_URL")),
		LocalURL:  ensureScheme(os.Getenv("SKUMAP_LOCAL_URL")),
		LANURL:    ensureScheme(os.Getenv("SKUMAP_LAN_URL")),
		GlobalURL: ensureScheme(os.Getenv("SKUMAP_GLOBAL_URL")),

		RefreshInterval: getEnvInt("SKUMAP_REFRESH_INTERVAL", 840),
	}

	if cfg.RefreshInterval < 60 {
		return nil, fmt.Errorf("SKUMAP_REFRESH_INTERVAL must be at least 60 seconds, got %d", cfg.RefreshInterval)
	}

	return cfg, nil
}

// NetworkLocation classifies where the client is running
type NetworkLocation int

const (
	LocationLoopback NetworkLocation = iota
	LocationPrivateLAN
	LocationPublic
)

// BaseURL resolves the API base URL for the given network location.
// Priority: explicit SKUMAP_API_URL, then the location-specific URL,
// then any configured URL as fallback, then the default.
func (c *Config) BaseURL(loc NetworkLocation) string {
	if c.APIURL != "" {
		return c.APIURL
	}

	var url string
	switch loc {
	case LocationLoopback:
		url = c.LocalURL
	case LocationPrivateLAN:
		url = c.LANURL
	case LocationPublic:
		url = c.GlobalURL
	}
	if url != "" {
		return url
	}

	for _, fallback := range []string{c.LocalURL, c.LANURL, c.GlobalURL} {
		if fallback != "" {
			return fallback
		}
	}
	return DefaultAPIURL
}

// DetectLocation classifies the machine by its interface addresses:
// loopback-only, private LAN, or public.
func DetectLocation() NetworkLocation {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return LocationLoopback
	}

	loc := LocationLoopback
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil {
			continue
		}
		if isPrivateLAN(ip) {
			loc = LocationPrivateLAN
			continue
		}
		// Any public address wins
		return LocationPublic
	}
	return loc
}

// isPrivateLAN reports whether ip is in 192.168/16, 10/8, or 172.16/12
func isPrivateLAN(ip net.IP) bool {
	if ip[0] == 192 && ip[1] == 168 {
		return true
	}
	if ip[0] == 10 {
		return true
	}
	if ip[0] == 172 && ip[1] >= 16 && ip[1] <= 31 {
		return true
	}
	return false
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
