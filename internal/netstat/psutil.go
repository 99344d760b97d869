package netstat

import (
	"context"
	"fmt"
	"net"
	"slices"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// PsutilProvider reads counters and addresses through gopsutil.
// It is the portable backend used where sysfs is unavailable.
type PsutilProvider struct {
	ioCounters func(ctx context.Context, pernic bool) ([]psnet.IOCountersStat, error)
	interfaces func(ctx context.Context) (psnet.InterfaceStatList, error)
}

// NewPsutilProvider creates a gopsutil-backed provider.
func NewPsutilProvider() *PsutilProvider {
	return &PsutilProvider{
		ioCounters: psnet.IOCountersWithContext,
		interfaces: psnet.InterfacesWithContext,
	}
}

// Name implements Provider.
func (p *PsutilProvider) Name() string { return "gopsutil" }

// Interfaces implements Provider.
func (p *PsutilProvider) Interfaces(ctx context.Context) ([]string, error) {
	list, err := p.interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	names := make([]string, 0, len(list))
	for _, iface := range list {
		names = append(names, iface.Name)
	}
	return sortedNames(names), nil
}

// Counters implements Provider.
func (p *PsutilProvider) Counters(ctx context.Context, name string) (Snapshot, bool, error) {
	stats, err := p.ioCounters(ctx, true)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read io counters: %w", err)
	}

	if name == "" {
		var total Snapshot
		for _, s := range stats {
			if s.Name == loopbackName {
				continue
			}
			total = total.Add(Snapshot{BytesSent: s.BytesSent, BytesRecv: s.BytesRecv})
		}
		return total, true, nil
	}

	for _, s := range stats {
		if s.Name == name {
			return Snapshot{BytesSent: s.BytesSent, BytesRecv: s.BytesRecv}, true, nil
		}
	}
	return Snapshot{}, false, nil
}

// AddressInfo implements Provider.
func (p *PsutilProvider) AddressInfo(ctx context.Context, name string) (AddressInfo, error) {
	list, err := p.interfaces(ctx)
	if err != nil {
		return AddressInfo{}, fmt.Errorf("list interfaces: %w", err)
	}

	for _, iface := range list {
		if iface.Name != name {
			continue
		}

		addrs := make([]net.Addr, 0, len(iface.Addrs))
		for _, a := range iface.Addrs {
			ip, ipNet, err := net.ParseCIDR(a.Addr)
			if err != nil {
				continue
			}
			addrs = append(addrs, &net.IPNet{IP: ip, Mask: ipNet.Mask})
		}

		info := ipv4FromAddrs(name, addrs)
		info.Up = slices.Contains(iface.Flags, "up")
		return info, nil
	}

	return UnknownAddress(name), nil
}
