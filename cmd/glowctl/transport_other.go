//go:build !linux

package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/nutriglow/nutriglow-go/pkg/config"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

func newHCIProvider(config.Config, *slog.Logger) (transport.Provider, closeFunc, error) {
	return nil, nil, fmt.Errorf("hci transport on %s: %w", runtime.GOOS, transport.ErrUnavailable)
}
