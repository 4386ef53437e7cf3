// Package config loads glowctl configuration files.
//
// Files are YAML (.yaml, .yml) or TOML (.toml). Keys absent from a file
// keep their defaults; unknown keys are rejected.
//
// Example (YAML):
//
//	transport:
//	  kind: bluez
//	  adapter: hci0
//	  scan_timeout: 15s
//	accessory:
//	  name_prefix: NutriGlow
//	reconnect:
//	  max_attempts: 3
//	  base_delay: 1s
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nutriglow/nutriglow-go/pkg/accessory"
	"github.com/nutriglow/nutriglow-go/pkg/connection"
	"github.com/nutriglow/nutriglow-go/pkg/resolver"
)

// Transport kinds.
const (
	TransportSim   = "sim"
	TransportBlueZ = "bluez"
	TransportHCI   = "hci"
)

// Default values not covered by other packages.
const (
	DefaultScanTimeout = 20 * time.Second
	DefaultAdapter     = "hci0"
	DefaultNamePrefix  = "NutriGlow"
	DefaultAppName     = "NutriGlow"
	DefaultLogLevel    = "info"
	DefaultSimFirmware = "nutriglow"
)

// Errors.
var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid configuration")

	// ErrUnknownFormat is returned for file extensions other than
	// .yaml, .yml and .toml.
	ErrUnknownFormat = errors.New("unknown configuration format")
)

// Format is a configuration file syntax.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Config is the complete file configuration.
type Config struct {
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	Accessory AccessoryConfig `yaml:"accessory" toml:"accessory"`
	Reconnect ReconnectConfig `yaml:"reconnect" toml:"reconnect"`
	Notify    NotifyConfig    `yaml:"notify" toml:"notify"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// TransportConfig selects and tunes the transport provider.
type TransportConfig struct {
	// Kind is sim, bluez or hci.
	Kind string `yaml:"kind" toml:"kind"`

	// Adapter is the BlueZ adapter name.
	Adapter string `yaml:"adapter" toml:"adapter"`

	// HCIDevice is the raw HCI device index; -1 picks the first available.
	HCIDevice int `yaml:"hci_device" toml:"hci_device"`

	// ScanTimeout bounds device selection.
	ScanTimeout Duration `yaml:"scan_timeout" toml:"scan_timeout"`

	// SimFirmware names the simulated accessory layout.
	SimFirmware string `yaml:"sim_firmware" toml:"sim_firmware"`
}

// AccessoryConfig describes which accessory to select and its known endpoint.
type AccessoryConfig struct {
	// NamePrefix filters advertised names during selection.
	NamePrefix string `yaml:"name_prefix" toml:"name_prefix"`

	// Address selects one accessory by Bluetooth address.
	Address string `yaml:"address" toml:"address"`

	// ServiceUUID is the well-known command service.
	ServiceUUID string `yaml:"service_uuid" toml:"service_uuid"`

	// CharacteristicUUID is the well-known command characteristic.
	CharacteristicUUID string `yaml:"characteristic_uuid" toml:"characteristic_uuid"`

	// SkipReset disables the OFF command sent after connecting.
	SkipReset bool `yaml:"skip_reset" toml:"skip_reset"`
}

// ReconnectConfig tunes link-loss recovery.
type ReconnectConfig struct {
	MaxAttempts    int      `yaml:"max_attempts" toml:"max_attempts"`
	BaseDelay      Duration `yaml:"base_delay" toml:"base_delay"`
	AttemptTimeout Duration `yaml:"attempt_timeout" toml:"attempt_timeout"`
}

// NotifyConfig selects notification sinks.
type NotifyConfig struct {
	// Desktop enables freedesktop notifications over the session bus.
	Desktop bool `yaml:"desktop" toml:"desktop"`

	// AppName is the application name shown with desktop notifications.
	AppName string `yaml:"app_name" toml:"app_name"`

	// Timeout is how long desktop notifications stay up; zero uses the server default.
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is trace, debug, info, warn, error or disabled.
	Level string `yaml:"level" toml:"level"`

	// ProtocolFile, if set, receives the CBOR protocol event log.
	ProtocolFile string `yaml:"protocol_file" toml:"protocol_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	mc := accessory.DefaultConfig()
	return Config{
		Transport: TransportConfig{
			Kind:        TransportBlueZ,
			Adapter:     DefaultAdapter,
			HCIDevice:   -1,
			ScanTimeout: Duration(DefaultScanTimeout),
			SimFirmware: DefaultSimFirmware,
		},
		Accessory: AccessoryConfig{
			NamePrefix:         DefaultNamePrefix,
			ServiceUUID:        resolver.NutriGlowServiceUUID,
			CharacteristicUUID: resolver.NutriGlowCommandUUID,
		},
		Reconnect: ReconnectConfig{
			MaxAttempts:    mc.MaxAttempts,
			BaseDelay:      Duration(mc.BaseDelay),
			AttemptTimeout: Duration(mc.AttemptTimeout),
		},
		Notify: NotifyConfig{
			AppName: DefaultAppName,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads path onto the defaults and validates the result.
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data onto the defaults and validates the result.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document leaves the defaults untouched.
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parse toml: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("parse toml: unknown keys %s", strings.Join(keys, ", "))
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize trims and canonicalises string fields in place.
func (c *Config) Normalize() {
	c.Transport.Kind = strings.ToLower(strings.TrimSpace(c.Transport.Kind))
	c.Transport.Adapter = strings.TrimSpace(c.Transport.Adapter)
	c.Transport.SimFirmware = strings.ToLower(strings.TrimSpace(c.Transport.SimFirmware))
	c.Accessory.NamePrefix = strings.TrimSpace(c.Accessory.NamePrefix)
	c.Accessory.Address = strings.ToUpper(strings.TrimSpace(c.Accessory.Address))
	c.Accessory.ServiceUUID = CanonicalUUID(c.Accessory.ServiceUUID)
	c.Accessory.CharacteristicUUID = CanonicalUUID(c.Accessory.CharacteristicUUID)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

// Validate reports every invalid field, joined, each wrapping ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch c.Transport.Kind {
	case TransportSim, TransportBlueZ, TransportHCI:
	default:
		bad("transport.kind %q (want sim, bluez or hci)", c.Transport.Kind)
	}
	if c.Transport.Kind == TransportBlueZ && c.Transport.Adapter == "" {
		bad("transport.adapter is required for bluez")
	}
	if c.Transport.ScanTimeout <= 0 {
		bad("transport.scan_timeout must be positive")
	}
	if c.Transport.HCIDevice < -1 {
		bad("transport.hci_device %d", c.Transport.HCIDevice)
	}
	if _, err := uuid.Parse(c.Accessory.ServiceUUID); err != nil {
		bad("accessory.service_uuid %q: %v", c.Accessory.ServiceUUID, err)
	}
	if _, err := uuid.Parse(c.Accessory.CharacteristicUUID); err != nil {
		bad("accessory.characteristic_uuid %q: %v", c.Accessory.CharacteristicUUID, err)
	}
	if c.Reconnect.MaxAttempts < 1 {
		bad("reconnect.max_attempts must be at least 1")
	}
	if c.Reconnect.BaseDelay <= 0 {
		bad("reconnect.base_delay must be positive")
	}
	if c.Reconnect.AttemptTimeout < 0 {
		bad("reconnect.attempt_timeout must not be negative")
	}
	if c.Notify.Timeout < 0 {
		bad("notify.timeout must not be negative")
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled":
	default:
		bad("log.level %q", c.Log.Level)
	}

	return errors.Join(errs...)
}

// ManagerConfig returns the accessory.Manager tuning.
func (c Config) ManagerConfig() accessory.Config {
	return accessory.Config{
		MaxAttempts:    c.Reconnect.MaxAttempts,
		BaseDelay:      c.Reconnect.BaseDelay.Std(),
		AttemptTimeout: c.Reconnect.AttemptTimeout.Std(),
		SkipReset:      c.Accessory.SkipReset,
	}
}

// Strategies returns the resolver strategy order for the configured
// well-known endpoint.
func (c Config) Strategies() []resolver.Strategy {
	return []resolver.Strategy{
		resolver.KnownEndpoint{
			Service:        c.Accessory.ServiceUUID,
			Characteristic: c.Accessory.CharacteristicUUID,
		},
		resolver.FirstWritableEnumerated{},
	}
}

// Schedule returns the reconnect delays implied by the configuration.
func (c Config) Schedule() []time.Duration {
	return connection.Schedule(c.Reconnect.BaseDelay.Std(), c.Reconnect.MaxAttempts)
}

// bluetoothBase is the Bluetooth SIG base UUID suffix for 16- and 32-bit UUIDs.
const bluetoothBase = "-0000-1000-8000-00805f9b34fb"

// CanonicalUUID lower-cases u and expands 16- and 32-bit Bluetooth
// short forms ("fff0", "0000fff0") to 128 bits. Other input is returned
// trimmed and lower-cased.
func CanonicalUUID(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	u = strings.TrimPrefix(u, "0x")
	if !isHex(u) {
		return u
	}
	switch len(u) {
	case 4:
		return "0000" + u + bluetoothBase
	case 8:
		return u + bluetoothBase
	}
	return u
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// Duration is a time.Duration written as a Go duration string ("1.5s").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(v)
	return nil
}
