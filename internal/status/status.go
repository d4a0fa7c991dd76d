// Package status provides the data sources behind the display's status bar
// readouts.
package status

import (
	psnet "github.com/shirou/gopsutil/net"
)

// Unknown reports every readout as its unknown sentinel. It is the default
// source and mirrors the device builds that ship without board probes.
type Unknown struct{}

// BatteryStatus reports an unknown battery.
func (Unknown) BatteryStatus() (int, bool) { return -1, false }

// NetworkStatus reports an unknown network.
func (Unknown) NetworkStatus() string { return "unknown" }

// Volume reports an unknown volume.
func (Unknown) Volume() int { return -1 }

// Host reads what it can from the host system. Network connectivity comes
// from the interface table; battery and volume have no portable probe and
// stay at their unknown sentinels.
type Host struct{}

// NewHost creates a host-backed status source.
func NewHost() *Host {
	return &Host{}
}

// BatteryStatus reports an unknown battery.
func (h *Host) BatteryStatus() (int, bool) { return -1, false }

// NetworkStatus reports "connected" when any non-loopback interface is up
// with an address, "disconnected" when none is, and "unknown" when the
// interface table cannot be read.
func (h *Host) NetworkStatus() string {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		return "unknown"
	}
	for _, iface := range ifaces {
		var up, loopback bool
		for _, flag := range iface.Flags {
			switch flag {
			case "up":
				up = true
			case "loopback":
				loopback = true
			}
		}
		if up && !loopback && len(iface.Addrs) > 0 {
			return "connected"
		}
	}
	return "disconnected"
}

// Volume reports an unknown volume.
func (h *Host) Volume() int { return -1 }
