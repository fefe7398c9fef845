// Package settings manages persistent user settings for the xrvrf CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/newtron-network/xrvrf/pkg/auth"
)

// Defaults used when a setting is not configured.
const (
	DefaultRedisAddr = "127.0.0.1:6379"
	DefaultRedisDB   = 0
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultDevice is the router address to use when --device is not specified
	DefaultDevice string `json:"default_device,omitempty"`

	// Username is the SSH login name
	Username string `json:"username,omitempty"`

	// KnownHostsFile verifies device host keys; empty disables verification
	KnownHostsFile string `json:"known_hosts_file,omitempty"`

	// RedisAddr is the fact cache address
	RedisAddr string `json:"redis_addr,omitempty"`

	// RedisDB is the fact cache database number
	RedisDB *int `json:"redis_db,omitempty"`

	// AuditLog overrides the audit log path
	AuditLog string `json:"audit_log,omitempty"`

	// Access restricts who may execute changes; nil allows everyone
	Access *auth.Policy `json:"access,omitempty"`
}

// Keys lists the setting names accepted by Get and Set.
var Keys = []string{"device", "username", "known_hosts", "redis_addr", "redis_db", "audit_log"}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "xrvrf_settings.json"
	}
	return filepath.Join(home, ".xrvrf", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetRedisAddr returns the fact cache address (with fallback)
func (s *Settings) GetRedisAddr() string {
	if s.RedisAddr != "" {
		return s.RedisAddr
	}
	return DefaultRedisAddr
}

// GetRedisDB returns the fact cache database (with fallback)
func (s *Settings) GetRedisDB() int {
	if s.RedisDB != nil {
		return *s.RedisDB
	}
	return DefaultRedisDB
}

// GetAuditLog returns the audit log path (with fallback)
func (s *Settings) GetAuditLog() string {
	if s.AuditLog != "" {
		return s.AuditLog
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "xrvrf_audit.log"
	}
	return filepath.Join(home, ".xrvrf", "audit.log")
}

// Get returns the configured value of a setting, or "" when unset.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "device":
		return s.DefaultDevice, nil
	case "username":
		return s.Username, nil
	case "known_hosts":
		return s.KnownHostsFile, nil
	case "redis_addr":
		return s.RedisAddr, nil
	case "redis_db":
		if s.RedisDB == nil {
			return "", nil
		}
		return strconv.Itoa(*s.RedisDB), nil
	case "audit_log":
		return s.AuditLog, nil
	}
	return "", unknownKey(key)
}

// Set updates a setting from its string form.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "device":
		s.DefaultDevice = value
	case "username":
		s.Username = value
	case "known_hosts":
		s.KnownHostsFile = value
	case "redis_addr":
		s.RedisAddr = value
	case "redis_db":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("redis_db must be a non-negative integer, got %q", value)
		}
		s.RedisDB = &n
	case "audit_log":
		s.AuditLog = value
	default:
		return unknownKey(key)
	}
	return nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown setting: %s (valid: %v)", key, Keys)
}
