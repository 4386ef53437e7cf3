// Package connection provides the accessory link states and the reconnect
// supervisor that recovers a link after unsolicited loss.
//
// # Reconnection Strategy
//
// When the link drops while connected, the supervisor runs one bounded
// sequence of attempts with linear backoff:
//
//  1. Attempt n waits BaseDelay x n before running (1s, 2s, 3s by default)
//  2. At most MaxAttempts attempts (3 by default)
//  3. The first successful attempt ends the sequence and resets the counter
//  4. If every attempt fails the sequence reports ErrRetriesExhausted
//
// Only one sequence runs at a time; Start while a sequence is active is
// ignored. Cancel stops the pending wait or attempt and returns only after
// the sequence goroutine has exited, so no attempt fires after Cancel.
//
// # Jitter
//
// Jitter is off by default. When set, a random fraction of the base delay
// is added:
//
//	actual_delay = base_delay + random(0, base_delay * jitter)
package connection
