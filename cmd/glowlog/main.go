// Command glowlog views and analyzes glowctl protocol log files.
//
// Log files are written by glowctl when run with --protocol-log.
//
// Usage:
//
//	glowlog <command> [flags] <file.glog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View only command writes
//	glowlog view --category command session.glog
//
//	# Export WATER writes to JSONL
//	glowlog export --command water session.glog
//
//	# Keep one connection
//	glowlog filter --conn-id c0ffee01-... -o one.glog session.glog
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/nutriglow/nutriglow-go/cmd/glowlog/commands"
)

const usage = `glowlog - NutriGlow Protocol Log Analyzer

Usage:
  glowlog <command> [flags] <file.glog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "glowlog <command> --help" for more information about a command.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return errors.New("command required")
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "view":
		return runView(args, stdout, stderr)
	case "export":
		return runExport(args, stdout, stderr)
	case "filter":
		return runFilter(args, stdout, stderr)
	case "stats":
		return runStats(args, stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// newFlagSet returns a flag set whose usage prints header, then the flags.
func newFlagSet(name, header string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, header)
		fs.PrintDefaults()
	}
	return fs
}

// filterFlags registers the shared filter flags on fs.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	var o commands.FilterOptions
	fs.StringVar(&o.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&o.DeviceID, "device-id", "", "Filter by device ID")
	fs.StringVar(&o.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&o.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&o.Layer, "layer", "", "Filter by layer (transport, command, connection)")
	fs.StringVar(&o.Direction, "direction", "", "Filter by direction (in, out, local)")
	fs.StringVar(&o.Category, "category", "", "Filter by category (command, notification, state, error)")
	fs.StringVar(&o.Command, "command", "", "Filter writes by command code or name")
	return &o
}

// logPath parses args and returns the single positional log file path.
func logPath(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return "", errors.New("log file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("view", `glowlog view - View log file in human-readable format

Usage:
  glowlog view [flags] <file.glog>

Flags:
`, stderr)
	opts := filterFlags(fs)

	path, err := logPath(fs, args)
	if err != nil {
		return err
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, stdout)
}

func runExport(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("export", `glowlog export - Export log file to JSONL or CSV

Usage:
  glowlog export [flags] <file.glog>

Flags:
`, stderr)
	opts := filterFlags(fs)
	format := fs.StringP("format", "f", "jsonl", "Output format (jsonl, csv)")
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")

	path, err := logPath(fs, args)
	if err != nil {
		return err
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return commands.RunExport(path, filter, *format, *output, stdout)
}

func runFilter(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("filter", `glowlog filter - Filter log file and write to new file

Usage:
  glowlog filter [flags] -o <out.glog> <file.glog>

Flags:
`, stderr)
	opts := filterFlags(fs)
	output := fs.StringP("output", "o", "", "Output file (required)")

	path, err := logPath(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return errors.New("output file (-o) required")
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}

	n, err := commands.RunFilter(path, filter, *output)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Filtered %d events to %s\n", n, *output)
	return nil
}

func runStats(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("stats", `glowlog stats - Show statistics about the log file

Usage:
  glowlog stats <file.glog>

`, stderr)

	path, err := logPath(fs, args)
	if err != nil {
		return err
	}
	return commands.RunStats(path, stdout)
}
