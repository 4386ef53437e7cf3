package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nutriglow/nutriglow-go/pkg/config"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
	"github.com/nutriglow/nutriglow-go/pkg/transport/bluez"
	"github.com/nutriglow/nutriglow-go/pkg/transport/sim"
)

// closeFunc releases a provider's resources.
type closeFunc func() error

func nopClose() error { return nil }

// newProvider builds the transport selected by cfg.
func newProvider(cfg config.Config, logger *slog.Logger) (transport.Provider, closeFunc, error) {
	tc := cfg.Transport
	ac := cfg.Accessory

	switch tc.Kind {
	case config.TransportSim:
		fw, ok := sim.Firmware(tc.SimFirmware)
		if !ok {
			return nil, nil, fmt.Errorf("unknown sim firmware %q (have %s)",
				tc.SimFirmware, strings.Join(sim.FirmwareNames(), ", "))
		}
		logger.Info("using simulated accessory", "firmware", tc.SimFirmware)
		return sim.New(fw), nopClose, nil

	case config.TransportBlueZ:
		p, err := bluez.New(
			bluez.WithAdapter(tc.Adapter),
			bluez.WithNamePrefix(ac.NamePrefix),
			bluez.WithAddress(ac.Address),
			bluez.WithServiceUUID(ac.ServiceUUID),
			bluez.WithScanTimeout(tc.ScanTimeout.Std()),
			bluez.WithLogger(logger.With("transport", "bluez")),
		)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil

	case config.TransportHCI:
		return newHCIProvider(cfg, logger.With("transport", "hci"))

	default:
		return nil, nil, fmt.Errorf("%w: transport %q", config.ErrInvalid, tc.Kind)
	}
}
