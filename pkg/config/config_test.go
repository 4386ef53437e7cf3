package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriglow/nutriglow-go/pkg/resolver"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, TransportBlueZ, cfg.Transport.Kind)
	assert.Equal(t, 3, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Reconnect.BaseDelay.Std())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, cfg.Schedule())
	assert.Equal(t, resolver.NutriGlowServiceUUID, cfg.Accessory.ServiceUUID)

	mc := cfg.ManagerConfig()
	assert.Equal(t, 3, mc.MaxAttempts)
	assert.Equal(t, time.Second, mc.BaseDelay)
	assert.False(t, mc.SkipReset)
}

const yamlConfig = `
transport:
  kind: SIM
  sim_firmware: vendor
  scan_timeout: 5s
accessory:
  service_uuid: FFE0
  characteristic_uuid: "0xffe1"
  skip_reset: true
reconnect:
  max_attempts: 5
  base_delay: 250ms
log:
  level: debug
  protocol_file: /tmp/glow.glog
`

const tomlConfig = `
[transport]
kind = "sim"
sim_firmware = "vendor"
scan_timeout = "5s"

[accessory]
service_uuid = "FFE0"
characteristic_uuid = "0xffe1"
skip_reset = true

[reconnect]
max_attempts = 5
base_delay = "250ms"

[log]
level = "debug"
protocol_file = "/tmp/glow.glog"
`

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"YAML", FormatYAML, yamlConfig},
		{"TOML", FormatTOML, tomlConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)

			assert.Equal(t, TransportSim, cfg.Transport.Kind)
			assert.Equal(t, "vendor", cfg.Transport.SimFirmware)
			assert.Equal(t, 5*time.Second, cfg.Transport.ScanTimeout.Std())
			assert.Equal(t, DefaultAdapter, cfg.Transport.Adapter, "unset keys keep defaults")
			assert.Equal(t, "0000ffe0-0000-1000-8000-00805f9b34fb", cfg.Accessory.ServiceUUID)
			assert.Equal(t, "0000ffe1-0000-1000-8000-00805f9b34fb", cfg.Accessory.CharacteristicUUID)
			assert.Equal(t, DefaultNamePrefix, cfg.Accessory.NamePrefix)
			assert.Equal(t, 5, cfg.Reconnect.MaxAttempts)
			assert.Equal(t, 250*time.Millisecond, cfg.Reconnect.BaseDelay.Std())
			assert.Equal(t, "debug", cfg.Log.Level)
			assert.Equal(t, "/tmp/glow.glog", cfg.Log.ProtocolFile)

			mc := cfg.ManagerConfig()
			assert.True(t, mc.SkipReset)
			assert.Equal(t, 250*time.Millisecond, mc.BaseDelay)

			strategies := cfg.Strategies()
			require.Len(t, strategies, 2)
			known, ok := strategies[0].(resolver.KnownEndpoint)
			require.True(t, ok)
			assert.Equal(t, cfg.Accessory.ServiceUUID, known.Service)
			assert.Equal(t, cfg.Accessory.CharacteristicUUID, known.Characteristic)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, f := range []Format{FormatYAML, FormatTOML} {
		cfg, err := Parse(nil, f)
		require.NoError(t, err, f)
		assert.Equal(t, Default(), cfg, f)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("transport:\n  knd: sim\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte("[transport]\nknd = \"sim\"\n"), FormatTOML)
	assert.ErrorContains(t, err, "transport.knd")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"Kind", func(c *Config) { c.Transport.Kind = "usb" }, "transport.kind"},
		{"Adapter", func(c *Config) { c.Transport.Adapter = "" }, "transport.adapter"},
		{"ScanTimeout", func(c *Config) { c.Transport.ScanTimeout = 0 }, "transport.scan_timeout"},
		{"ServiceUUID", func(c *Config) { c.Accessory.ServiceUUID = "not-a-uuid" }, "accessory.service_uuid"},
		{"CharacteristicUUID", func(c *Config) { c.Accessory.CharacteristicUUID = "" }, "accessory.characteristic_uuid"},
		{"MaxAttempts", func(c *Config) { c.Reconnect.MaxAttempts = 0 }, "reconnect.max_attempts"},
		{"BaseDelay", func(c *Config) { c.Reconnect.BaseDelay = -1 }, "reconnect.base_delay"},
		{"LogLevel", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, tt.field)
		})
	}

	t.Run("Joined", func(t *testing.T) {
		cfg := Default()
		cfg.Transport.Kind = "usb"
		cfg.Reconnect.MaxAttempts = 0
		err := cfg.Validate()
		assert.ErrorContains(t, err, "transport.kind")
		assert.ErrorContains(t, err, "reconnect.max_attempts")
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "glowctl.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlConfig), 0o600))
	cfg, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, TransportSim, cfg.Transport.Kind)

	tomlPath := filepath.Join(dir, "glowctl.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlConfig), 0o600))
	cfg, err = Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Reconnect.MaxAttempts)

	_, err = Load(filepath.Join(dir, "glowctl.json"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("reconnect:\n  base_delay: soon\n"), 0o600))
	_, err = Load(badPath)
	assert.ErrorContains(t, err, "bad.yaml")
}

func TestCanonicalUUID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"fff0", "0000fff0-0000-1000-8000-00805f9b34fb"},
		{"0xFFF1", "0000fff1-0000-1000-8000-00805f9b34fb"},
		{"0000180F", "0000180f-0000-1000-8000-00805f9b34fb"},
		{" 6E400001-B5A3-F393-E0A9-E50E24DCCA9E ", "6e400001-b5a3-f393-e0a9-e50e24dcca9e"},
		{"garbage", "garbage"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalUUID(tt.in), tt.in)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
