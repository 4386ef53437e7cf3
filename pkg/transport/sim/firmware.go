package sim

import (
	"sort"

	"github.com/nutriglow/nutriglow-go/pkg/resolver"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Vendor UUIDs used by the non-standard firmware layouts.
const (
	VendorServiceUUID        = "0000ffe0-0000-1000-8000-00805f9b34fb"
	VendorCharacteristicUUID = "0000ffe1-0000-1000-8000-00805f9b34fb"
	BatteryServiceUUID       = "0000180f-0000-1000-8000-00805f9b34fb"
	BatteryLevelUUID         = "00002a19-0000-1000-8000-00805f9b34fb"
	DeviceInfoServiceUUID    = "0000180a-0000-1000-8000-00805f9b34fb"
	FirmwareRevisionUUID     = "00002a26-0000-1000-8000-00805f9b34fb"
)

// CharacteristicLayout describes one simulated characteristic.
type CharacteristicLayout struct {
	UUID       string
	Properties transport.Properties
}

// ServiceLayout describes one simulated primary service.
type ServiceLayout struct {
	UUID            string
	Characteristics []CharacteristicLayout
}

// Accessory describes the simulated device and its GATT table.
// Services are exposed in slice order.
type Accessory struct {
	ID       string
	Name     string
	Address  string
	Services []ServiceLayout
}

func (a Accessory) device() transport.Device {
	return transport.Device{ID: a.ID, Name: a.Name, Address: a.Address}
}

func readOnlyServices() []ServiceLayout {
	return []ServiceLayout{
		{
			UUID: BatteryServiceUUID,
			Characteristics: []CharacteristicLayout{
				{UUID: BatteryLevelUUID, Properties: transport.PropRead | transport.PropNotify},
			},
		},
		{
			UUID: DeviceInfoServiceUUID,
			Characteristics: []CharacteristicLayout{
				{UUID: FirmwareRevisionUUID, Properties: transport.PropRead},
			},
		},
	}
}

// NutriGlowFirmware exposes the well-known command service and characteristic
// with both write modes and notifications.
func NutriGlowFirmware() Accessory {
	return Accessory{
		ID:      "sim-0001",
		Name:    "NutriGlow-1A2B",
		Address: "C0:FF:EE:00:1A:2B",
		Services: append(readOnlyServices(), ServiceLayout{
			UUID: resolver.NutriGlowServiceUUID,
			Characteristics: []CharacteristicLayout{
				{
					UUID:       resolver.NutriGlowCommandUUID,
					Properties: transport.PropRead | transport.PropWrite | transport.PropWriteWithoutResponse | transport.PropNotify,
				},
			},
		}),
	}
}

// VendorFirmware lacks the well-known identifiers and exposes a single
// acked-write vendor characteristic behind two read-only services.
func VendorFirmware() Accessory {
	return Accessory{
		ID:      "sim-0002",
		Name:    "NutriGlow-V",
		Address: "C0:FF:EE:00:00:02",
		Services: append(readOnlyServices(), ServiceLayout{
			UUID: VendorServiceUUID,
			Characteristics: []CharacteristicLayout{
				{UUID: FirmwareRevisionUUID, Properties: transport.PropRead},
				{UUID: VendorCharacteristicUUID, Properties: transport.PropWrite | transport.PropNotify},
			},
		}),
	}
}

// UnackedOnlyFirmware exposes a vendor characteristic that only accepts
// write-without-response.
func UnackedOnlyFirmware() Accessory {
	return Accessory{
		ID:      "sim-0003",
		Name:    "NutriGlow-U",
		Address: "C0:FF:EE:00:00:03",
		Services: []ServiceLayout{
			{
				UUID: VendorServiceUUID,
				Characteristics: []CharacteristicLayout{
					{UUID: VendorCharacteristicUUID, Properties: transport.PropWriteWithoutResponse},
				},
			},
		},
	}
}

// ReadOnlyFirmware exposes no writable characteristic at all.
func ReadOnlyFirmware() Accessory {
	return Accessory{
		ID:       "sim-0004",
		Name:     "NutriGlow-R",
		Address:  "C0:FF:EE:00:00:04",
		Services: readOnlyServices(),
	}
}

var firmwares = map[string]func() Accessory{
	"nutriglow": NutriGlowFirmware,
	"vendor":    VendorFirmware,
	"unacked":   UnackedOnlyFirmware,
	"readonly":  ReadOnlyFirmware,
}

// Firmware returns the named layout.
func Firmware(name string) (Accessory, bool) {
	fn, ok := firmwares[name]
	if !ok {
		return Accessory{}, false
	}
	return fn(), true
}

// FirmwareNames returns the known layout names, sorted.
func FirmwareNames() []string {
	names := make([]string, 0, len(firmwares))
	for name := range firmwares {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
