package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/nutriglow/nutriglow-go/cmd/glowctl/interactive"
	"github.com/nutriglow/nutriglow-go/pkg/accessory"
	"github.com/nutriglow/nutriglow-go/pkg/command"
	"github.com/nutriglow/nutriglow-go/pkg/config"
	plog "github.com/nutriglow/nutriglow-go/pkg/log"
	"github.com/nutriglow/nutriglow-go/pkg/notify"
	"github.com/nutriglow/nutriglow-go/pkg/resolver"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// version is overridable at link time:
//
//	go build -ldflags "-X main.version=1.0.0"
var version = "0.1.0"

// ErrNeedsTerminal is returned when interactive mode is requested without
// a terminal on stdin.
var ErrNeedsTerminal = errors.New("interactive mode needs a terminal (use a subcommand, see --help)")

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// flags holds the raw command-line values. They override the
// configuration file only when set explicitly.
type flags struct {
	configPath  string
	transport   string
	adapter     string
	hciDevice   int
	namePrefix  string
	address     string
	serviceUUID string
	charUUID    string
	scanTimeout time.Duration
	simFirmware string
	maxAttempts int
	baseDelay   time.Duration
	skipReset   bool
	logLevel    string
	protocolLog string
	desktop     bool
}

// Execute parses args and runs the selected glowctl mode.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var f flags
	defaults := config.Default()
	fs := flag.NewFlagSet("glowctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── configuration ────────────────────────────────────────────
	fs.StringVarP(&f.configPath, "config", "c", "", "Configuration file (.yaml, .yml or .toml)")

	// ── transport ────────────────────────────────────────────────
	fs.StringVarP(&f.transport, "transport", "t", defaults.Transport.Kind, "Transport: bluez, hci or sim")
	fs.StringVar(&f.adapter, "adapter", defaults.Transport.Adapter, "BlueZ adapter")
	fs.IntVar(&f.hciDevice, "hci-device", defaults.Transport.HCIDevice, "HCI device index (-1 for the first available)")
	fs.DurationVar(&f.scanTimeout, "scan-timeout", defaults.Transport.ScanTimeout.Std(), "Accessory selection timeout")
	fs.StringVar(&f.simFirmware, "sim-firmware", defaults.Transport.SimFirmware, "Simulated accessory layout (sim transport)")

	// ── accessory ────────────────────────────────────────────────
	fs.StringVar(&f.namePrefix, "name-prefix", defaults.Accessory.NamePrefix, "Select accessories whose name starts with this")
	fs.StringVar(&f.address, "address", "", "Select the accessory with this Bluetooth address")
	fs.StringVar(&f.serviceUUID, "service-uuid", defaults.Accessory.ServiceUUID, "Command service UUID")
	fs.StringVar(&f.charUUID, "characteristic-uuid", defaults.Accessory.CharacteristicUUID, "Command characteristic UUID")
	fs.BoolVar(&f.skipReset, "skip-reset", false, "Do not send OFF after connecting")

	// ── reconnect ────────────────────────────────────────────────
	fs.IntVar(&f.maxAttempts, "max-attempts", defaults.Reconnect.MaxAttempts, "Reconnect attempts after a link loss")
	fs.DurationVar(&f.baseDelay, "base-delay", defaults.Reconnect.BaseDelay.Std(), "Reconnect delay unit (attempt n waits n times this)")

	// ── output ───────────────────────────────────────────────────
	fs.StringVarP(&f.logLevel, "log-level", "l", defaults.Log.Level, "Log level: trace, debug, info, warn, error, disabled")
	fs.StringVarP(&f.protocolLog, "protocol-log", "p", "", "Write a CBOR protocol log to this file")
	fs.BoolVar(&f.desktop, "desktop", false, "Post desktop notifications")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stdout, fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if showHelp {
		printUsage(stdout, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "glowctl %s\n", version)
		return nil
	}

	rest := fs.Args()
	if len(rest) > 0 && rest[0] == "codes" {
		printCodes(stdout)
		return nil
	}

	cfg, err := loadConfig(fs, &f)
	if err != nil {
		return err
	}

	if len(rest) == 0 {
		if !stdinIsTerminal() {
			return ErrNeedsTerminal
		}
		return runInteractive(ctx, cfg, stderr)
	}

	switch rest[0] {
	case "config":
		return printConfig(stdout, cfg)
	case "send":
		return runSend(ctx, cfg, rest[1:], stdout, stderr)
	case "scan":
		return runScan(ctx, cfg, stdout, stderr)
	case "watch":
		return runWatch(ctx, cfg, stdout, stderr)
	default:
		return fmt.Errorf("unknown command %q (see --help)", rest[0])
	}
}

// loadConfig reads the configuration file, if any, and applies explicitly
// set flags on top.
func loadConfig(fs *flag.FlagSet, f *flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("transport", func() { cfg.Transport.Kind = f.transport })
	set("adapter", func() { cfg.Transport.Adapter = f.adapter })
	set("hci-device", func() { cfg.Transport.HCIDevice = f.hciDevice })
	set("scan-timeout", func() { cfg.Transport.ScanTimeout = config.Duration(f.scanTimeout) })
	set("sim-firmware", func() { cfg.Transport.SimFirmware = f.simFirmware })
	set("name-prefix", func() { cfg.Accessory.NamePrefix = f.namePrefix })
	set("address", func() { cfg.Accessory.Address = f.address })
	set("service-uuid", func() { cfg.Accessory.ServiceUUID = f.serviceUUID })
	set("characteristic-uuid", func() { cfg.Accessory.CharacteristicUUID = f.charUUID })
	set("skip-reset", func() { cfg.Accessory.SkipReset = f.skipReset })
	set("max-attempts", func() { cfg.Reconnect.MaxAttempts = f.maxAttempts })
	set("base-delay", func() { cfg.Reconnect.BaseDelay = config.Duration(f.baseDelay) })
	set("log-level", func() { cfg.Log.Level = f.logLevel })
	set("protocol-log", func() { cfg.Log.ProtocolFile = f.protocolLog })
	set("desktop", func() { cfg.Notify.Desktop = f.desktop })

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// app holds the wired components for one run.
type app struct {
	zl       zerolog.Logger
	logger   *slog.Logger
	provider transport.Provider
	mgr      *accessory.Manager
	closers  []func() error
}

// newApp wires loggers, transport, sinks and the Manager. Log output goes
// to logOut; extra sinks receive notifications after the log sink.
func newApp(cfg config.Config, logOut io.Writer, extra ...notify.Sink) (*app, error) {
	a := &app{}
	a.zl, a.logger = newLoggers(logOut, effectiveLevel(cfg.Log.Level))

	provider, closeProvider, err := newProvider(cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.provider = provider
	a.closers = append(a.closers, closeProvider)

	sinks := []notify.Sink{notify.NewLogSink(a.logger.With("component", "notify"))}
	if cfg.Notify.Desktop {
		desktop, err := notify.NewDesktopSink(cfg.Notify.AppName, notify.WithTimeout(cfg.Notify.Timeout.Std()))
		if err != nil {
			a.logger.Warn("desktop notifications unavailable", "error", err)
		} else {
			sinks = append(sinks, desktop)
			a.closers = append(a.closers, desktop.Close)
		}
	}
	sinks = append(sinks, extra...)

	protocol := []plog.Logger{plog.NewZerologAdapter(a.zl.With().Str("component", "protocol").Logger())}
	if cfg.Log.ProtocolFile != "" {
		fl, err := plog.NewFileLogger(cfg.Log.ProtocolFile)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("protocol log: %w", err)
		}
		a.logger.Info("writing protocol log", "path", fl.Path())
		protocol = append(protocol, fl)
		a.closers = append(a.closers, fl.Close)
	}

	res := resolver.New(
		resolver.WithStrategies(cfg.Strategies()...),
		resolver.WithLogger(a.logger.With("component", "resolver")),
	)
	a.mgr = accessory.New(provider,
		accessory.WithConfig(cfg.ManagerConfig()),
		accessory.WithLogger(a.logger.With("component", "accessory")),
		accessory.WithSink(notify.NewMulti(sinks...)),
		accessory.WithProtocolLogger(plog.NewMultiLogger(protocol...)),
		accessory.WithResolver(res),
	)
	return a, nil
}

// close shuts the Manager down, then releases resources in reverse order.
func (a *app) close() {
	if a.mgr != nil {
		_ = a.mgr.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

func runSend(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("send: at least one command code required")
	}
	codes := make([]command.Code, 0, len(args))
	for _, arg := range args {
		code, err := command.Parse(arg)
		if err != nil {
			return fmt.Errorf("send %q: %w", arg, err)
		}
		codes = append(codes, code)
	}

	a, err := newApp(cfg, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.mgr.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	fmt.Fprintf(stdout, "Connected: %s\n", a.mgr.Status())

	for _, code := range codes {
		if err := a.mgr.SendCommand(ctx, code); err != nil {
			return fmt.Errorf("send %s: %w", code, err)
		}
		fmt.Fprintf(stdout, "Sent %s\n", code)
	}
	a.mgr.Disconnect()
	return nil
}

func runScan(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	a, err := newApp(cfg, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	dev, err := a.provider.RequestDevice(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", accessory.Classify(err))
	}
	fmt.Fprintf(stdout, "Found %s\n", dev.DisplayName())
	fmt.Fprintf(stdout, "  ID:      %s\n", dev.ID)
	if dev.Address != "" {
		fmt.Fprintf(stdout, "  Address: %s\n", dev.Address)
	}
	return nil
}

// runWatch connects and prints every status change until ctx is done.
func runWatch(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	a, err := newApp(cfg, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	updates, cancel := a.mgr.Subscribe()
	defer cancel()

	if err := a.mgr.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			fmt.Fprintf(stdout, "%s %s\n", time.Now().Format(time.TimeOnly), st)
		}
	}
}

func runInteractive(ctx context.Context, cfg config.Config, stderr io.Writer) error {
	logOut := &switchWriter{w: stderr}

	// The console needs the Manager, and the Manager needs the console's
	// sink, so the sink forwards once the console exists.
	var console atomic.Pointer[interactive.Console]
	forward := notify.Func(func(kind notify.Kind, message string) {
		if c := console.Load(); c != nil {
			c.Sink().Notify(kind, message)
		}
	})

	a, err := newApp(cfg, logOut, forward)
	if err != nil {
		return err
	}
	defer a.close()

	var opts []interactive.Option
	if s, ok := a.provider.(interactive.Simulator); ok {
		opts = append(opts, interactive.WithSimulator(s))
	}
	c, err := interactive.New(a.mgr, opts...)
	if err != nil {
		return err
	}
	console.Store(c)
	logOut.Set(c.Stdout())
	defer logOut.Set(stderr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.Run(ctx, cancel)
	return nil
}

func printCodes(w io.Writer) {
	for _, code := range command.Codes() {
		fmt.Fprintf(w, "%d\t%s\n", code, code)
	}
}

func printConfig(w io.Writer, cfg config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `glowctl - NutriGlow accessory control v%s

Usage:
  glowctl [options]                    Interactive mode
  glowctl [options] send <code...>     Connect, send commands, disconnect
  glowctl [options] scan               Select an accessory and print it
  glowctl [options] watch              Connect and print status changes
  glowctl codes                        List command codes
  glowctl [options] config             Print the effective configuration

Options:
`, version)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Codes: %s

Environment:
  %s overrides --log-level

Examples:
  glowctl send water                   Hydration reminder
  glowctl -t sim send 1 4              Simulated accessory
  glowctl -c glow.yaml watch           Watch link status
`, codeList(), EnvLogLevel)
}

func codeList() string {
	names := make([]string, 0, len(command.Codes()))
	for _, code := range command.Codes() {
		names = append(names, strings.ToLower(code.String()))
	}
	return strings.Join(names, ", ")
}
