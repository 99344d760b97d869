// Package netstat reads cumulative network byte counters and interface
// address details from the operating system.
package netstat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
)

// NotAvailable is shown for an address or mask the interface does not have.
const NotAvailable = "N/A"

// loopbackName is excluded from system-wide totals.
const loopbackName = "lo"

// ErrUnknownBackend is returned by NewProvider for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown counter backend")

// Snapshot is a point-in-time reading of cumulative byte counters.
type Snapshot struct {
	BytesSent uint64
	BytesRecv uint64
}

// Add returns the component-wise sum of two snapshots.
func (s Snapshot) Add(o Snapshot) Snapshot {
	return Snapshot{BytesSent: s.BytesSent + o.BytesSent, BytesRecv: s.BytesRecv + o.BytesRecv}
}

// AddressInfo describes the IPv4 configuration of one interface.
type AddressInfo struct {
	Name    string
	IPv4    string
	Netmask string
	Up      bool
}

// UnknownAddress returns the AddressInfo reported for an interface without IPv4.
func UnknownAddress(name string) AddressInfo {
	return AddressInfo{Name: name, IPv4: NotAvailable, Netmask: NotAvailable}
}

// Provider is the platform capability used by the monitor.
type Provider interface {
	// Name identifies the backend in logs.
	Name() string

	// Interfaces lists the interface names currently known to the system, sorted.
	Interfaces(ctx context.Context) ([]string, error)

	// Counters reads the cumulative counters of the named interface, or the
	// system-wide total (loopback excluded) when name is empty.
	// A missing interface yields a zero snapshot and ok=false, not an error.
	Counters(ctx context.Context, name string) (snap Snapshot, ok bool, err error)

	// AddressInfo returns the IPv4 address and mask of the named interface.
	// Missing interfaces and interfaces without IPv4 report NotAvailable.
	AddressInfo(ctx context.Context, name string) (AddressInfo, error)
}

// NewProvider returns the provider for the given backend name.
// "auto" picks sysfs when /sys/class/net is readable and gopsutil otherwise.
func NewProvider(backend string) (Provider, error) {
	switch backend {
	case "sysfs":
		return NewSysfsProvider(""), nil
	case "gopsutil":
		return NewPsutilProvider(), nil
	case "", "auto":
		if _, err := os.Stat(DefaultSysfsRoot); err == nil {
			return NewSysfsProvider(""), nil
		}
		return NewPsutilProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// DefaultInterface chooses the interface selected on first start:
// a wireless interface if present, else the first non-loopback one.
func DefaultInterface(names []string) string {
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.Contains(name, "Wi-Fi") || strings.HasPrefix(lower, "wl") {
			return name
		}
	}
	for _, name := range names {
		if name != loopbackName {
			return name
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

// ipv4FromAddrs picks the first IPv4 address and renders its mask in dotted form.
func ipv4FromAddrs(name string, addrs []net.Addr) AddressInfo {
	info := UnknownAddress(name)
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipNet.IP.To4()
		if ip4 == nil {
			continue
		}
		info.IPv4 = ip4.String()
		info.Netmask = dottedMask(ipNet.Mask)
		return info
	}
	return info
}

// dottedMask renders an IPv4 mask as a.b.c.d.
func dottedMask(mask net.IPMask) string {
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return NotAvailable
	}
	return net.IP(mask).String()
}

func sortedNames(names []string) []string {
	sort.Strings(names)
	return names
}
