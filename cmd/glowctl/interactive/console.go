// Package interactive provides the interactive command-line interface
// for glowctl.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/nutriglow/nutriglow-go/pkg/accessory"
	"github.com/nutriglow/nutriglow-go/pkg/command"
	"github.com/nutriglow/nutriglow-go/pkg/notify"
)

// DefaultCommandTimeout bounds connect and send from the prompt.
const DefaultCommandTimeout = 60 * time.Second

// Simulator is implemented by transports that can fake link events.
type Simulator interface {
	DropLink() bool
}

// Console runs glowctl's interactive prompt against a Manager.
type Console struct {
	mgr     *accessory.Manager
	sim     Simulator
	out     io.Writer
	rl      *readline.Instance
	timeout time.Duration

	mu      sync.Mutex
	unwatch func()
}

// Option configures a Console.
type Option func(*Console)

// WithSimulator enables the drop command.
func WithSimulator(s Simulator) Option {
	return func(c *Console) { c.sim = s }
}

// WithCommandTimeout overrides DefaultCommandTimeout.
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a console with a readline prompt on the terminal.
func New(mgr *accessory.Manager, opts ...Option) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "glow> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	c := newConsole(mgr, rl.Stdout(), opts...)
	c.rl = rl
	return c, nil
}

func newConsole(mgr *accessory.Manager, out io.Writer, opts ...Option) *Console {
	c := &Console{
		mgr:     mgr,
		out:     out,
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func completer() *readline.PrefixCompleter {
	codes := make([]readline.PrefixCompleterInterface, 0, len(command.Codes()))
	for _, code := range command.Codes() {
		codes = append(codes, readline.PcItem(strings.ToLower(code.String())))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("connect"),
		readline.PcItem("disconnect"),
		readline.PcItem("send", codes...),
		readline.PcItem("status"),
		readline.PcItem("link"),
		readline.PcItem("watch", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("codes"),
		readline.PcItem("drop"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that coordinates with the prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Sink returns a notification sink that prints to the console.
func (c *Console) Sink() notify.Sink {
	return notify.Func(func(kind notify.Kind, message string) {
		fmt.Fprintf(c.out, "[%s] %s\n", kind, message)
	})
}

// Run reads commands until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	defer c.stopWatch()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if quit := c.Exec(ctx, line); quit {
			cancel()
			return
		}
	}
}

// Exec runs one command line and reports whether the console should exit.
func (c *Console) Exec(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "connect", "c":
		c.cmdConnect(ctx)
	case "disconnect", "d":
		c.mgr.Disconnect()
		fmt.Fprintln(c.out, "Disconnected")
	case "send", "s":
		c.cmdSend(ctx, args)
	case "status", "st":
		c.cmdStatus()
	case "link":
		c.cmdLink()
	case "watch", "w":
		c.cmdWatch(args)
	case "codes":
		c.cmdCodes()
	case "drop":
		c.cmdDrop()
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
NutriGlow Commands:
  Connection:
    connect            - Select an accessory and connect
    disconnect         - Disconnect and cancel any reconnect
    link               - Show the resolved command endpoint

  Commands:
    send <code|name>   - Send a command (e.g. send water, send 4)
    codes              - List command codes

  Monitoring:
    status             - Show link status
    watch [on|off]     - Print status changes as they happen
    drop               - Simulate link loss (sim transport only)

  General:
    help               - Show this help
    quit               - Exit`)
}

func (c *Console) cmdConnect(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fmt.Fprintln(c.out, "Connecting...")
	if err := c.mgr.Connect(ctx); err != nil {
		fmt.Fprintf(c.out, "Connect failed: %s (%v)\n", accessory.ErrorKind(err), err)
		return
	}
	fmt.Fprintf(c.out, "Connected: %s\n", c.mgr.Status())
}

func (c *Console) cmdSend(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: send <code|name>")
		return
	}
	code, err := command.Parse(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid command %q (type 'codes' for the list)\n", args[0])
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.mgr.SendCommand(ctx, code); err != nil {
		fmt.Fprintf(c.out, "Send %s failed: %s (%v)\n", code, accessory.ErrorKind(err), err)
		return
	}
	fmt.Fprintf(c.out, "Sent %s\n", code)
}

func (c *Console) cmdStatus() {
	st := c.mgr.Status()
	fmt.Fprintf(c.out, "State:        %s\n", st.State)
	if st.DeviceName != "" {
		fmt.Fprintf(c.out, "Device:       %s\n", st.DeviceName)
	}
	if st.Attempt > 0 {
		fmt.Fprintf(c.out, "Attempt:      %d/%d\n", st.Attempt, c.mgr.Config().MaxAttempts)
	}
	if st.LastCommand != nil {
		fmt.Fprintf(c.out, "Last command: %s\n", st.LastCommand)
	}
	if st.LastError != "" {
		fmt.Fprintf(c.out, "Last error:   %s\n", st.LastError)
	}
}

func (c *Console) cmdLink() {
	info, ok := c.mgr.Link()
	if !ok {
		fmt.Fprintln(c.out, "Not connected")
		return
	}
	fmt.Fprintf(c.out, "Device:         %s (%s)\n", info.Device.DisplayName(), info.Device.ID)
	fmt.Fprintf(c.out, "Connection:     %s\n", info.ConnectionID)
	fmt.Fprintf(c.out, "Service:        %s\n", info.ServiceUUID)
	fmt.Fprintf(c.out, "Characteristic: %s\n", info.CharacteristicUUID)
	fmt.Fprintf(c.out, "Resolved by:    %s\n", info.Strategy)
	fmt.Fprintf(c.out, "Writes:         acked=%t unacked=%t\n", info.AckedWrite, info.UnackedWrite)
	fmt.Fprintf(c.out, "Notify:         %t (subscribed=%t)\n", info.Notify, info.Subscribed)
}

func (c *Console) cmdWatch(args []string) {
	on := true
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on":
		case "off":
			on = false
		default:
			fmt.Fprintln(c.out, "Usage: watch [on|off]")
			return
		}
	}

	if !on {
		if c.stopWatch() {
			fmt.Fprintln(c.out, "Watch off")
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unwatch != nil {
		fmt.Fprintln(c.out, "Already watching")
		return
	}
	c.unwatch = c.mgr.OnStatusChange(func(old, new accessory.Status) {
		fmt.Fprintf(c.out, "[status] %s -> %s\n", old.State, new)
	})
	fmt.Fprintln(c.out, "Watching status changes")
}

func (c *Console) stopWatch() bool {
	c.mu.Lock()
	unwatch := c.unwatch
	c.unwatch = nil
	c.mu.Unlock()
	if unwatch == nil {
		return false
	}
	unwatch()
	return true
}

func (c *Console) cmdCodes() {
	for _, code := range command.Codes() {
		fmt.Fprintf(c.out, "  %d  %s\n", code, code)
	}
}

func (c *Console) cmdDrop() {
	if c.sim == nil {
		fmt.Fprintln(c.out, "drop is only available with the sim transport")
		return
	}
	if !c.sim.DropLink() {
		fmt.Fprintln(c.out, "No live link to drop")
		return
	}
	fmt.Fprintln(c.out, "Link dropped")
}
