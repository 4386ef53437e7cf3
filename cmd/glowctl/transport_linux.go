//go:build linux

package main

import (
	"log/slog"

	"github.com/nutriglow/nutriglow-go/pkg/config"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
	"github.com/nutriglow/nutriglow-go/pkg/transport/hci"
)

func newHCIProvider(cfg config.Config, logger *slog.Logger) (transport.Provider, closeFunc, error) {
	p, err := hci.New(
		hci.WithDeviceID(cfg.Transport.HCIDevice),
		hci.WithNamePrefix(cfg.Accessory.NamePrefix),
		hci.WithAddress(cfg.Accessory.Address),
		hci.WithServiceUUID(cfg.Accessory.ServiceUUID),
		hci.WithScanTimeout(cfg.Transport.ScanTimeout.Std()),
		hci.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}
