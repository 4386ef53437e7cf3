// Command glowctl connects to a NutriGlow accessory and sends commands.
//
// Usage:
//
//	glowctl [flags]                  Interactive mode (terminal only)
//	glowctl [flags] send <code...>   Connect, send, disconnect
//	glowctl [flags] scan             Select an accessory and print it
//	glowctl [flags] watch            Connect and print status changes
//	glowctl codes                    List command codes
//	glowctl [flags] config           Print the effective configuration
//
// Examples:
//
//	# Remind the user to drink water
//	glowctl send water
//
//	# Use a simulated accessory
//	glowctl --transport sim send 1 4
//
//	# Record a protocol log
//	glowctl --protocol-log session.glog
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "glowctl: %v\n", err)
		stop()
		os.Exit(1)
	}
}
