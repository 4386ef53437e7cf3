// Package hci implements the transport interfaces directly on an HCI socket
// using github.com/paypal/gatt, bypassing the BlueZ daemon.
//
// The process needs CAP_NET_ADMIN (or root) and the adapter must not be
// claimed by bluetoothd. Peripherals are addressed by the ID gatt reports
// during scanning, so Open only accepts devices returned by RequestDevice
// on the same Provider.
package hci
