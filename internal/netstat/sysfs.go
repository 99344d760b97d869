package netstat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSysfsRoot is the base path for network interface statistics.
const DefaultSysfsRoot = "/sys/class/net"

var errInvalidStatsPath = errors.New("invalid stats path: outside sysfs network directory")

// SysfsProvider reads counters from /sys/class/net/<iface>/statistics.
// Addresses come from the kernel through the net package.
type SysfsProvider struct {
	root string

	// addrs returns the addresses and flags of an interface; swapped in tests.
	addrs func(name string) ([]net.Addr, net.Flags, error)
}

// NewSysfsProvider creates a provider rooted at root, or DefaultSysfsRoot when empty.
func NewSysfsProvider(root string) *SysfsProvider {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &SysfsProvider{
		root:  filepath.Clean(root),
		addrs: kernelAddrs,
	}
}

// Name implements Provider.
func (p *SysfsProvider) Name() string { return "sysfs" }

// Interfaces implements Provider.
func (p *SysfsProvider) Interfaces(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return sortedNames(names), nil
}

// Counters implements Provider.
func (p *SysfsProvider) Counters(ctx context.Context, name string) (Snapshot, bool, error) {
	if name != "" {
		return p.interfaceCounters(name)
	}

	names, err := p.Interfaces(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}

	var total Snapshot
	for _, n := range names {
		if n == loopbackName {
			continue
		}
		snap, ok, err := p.interfaceCounters(n)
		if err != nil {
			return Snapshot{}, false, err
		}
		if ok {
			total = total.Add(snap)
		}
	}
	return total, true, nil
}

// interfaceCounters reads rx_bytes and tx_bytes for one interface.
func (p *SysfsProvider) interfaceCounters(name string) (Snapshot, bool, error) {
	statsDir := filepath.Join(p.root, name, "statistics")

	rx, err := p.readStatFile(filepath.Join(statsDir, "rx_bytes"))
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	tx, err := p.readStatFile(filepath.Join(statsDir, "tx_bytes"))
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	return Snapshot{BytesSent: tx, BytesRecv: rx}, true, nil
}

// readStatFile reads a single stat file and parses it as uint64.
// The path must stay inside the provider root so interface names cannot escape it.
func (p *SysfsProvider) readStatFile(path string) (uint64, error) {
	cleanPath := filepath.Clean(path)
	if !strings.HasPrefix(cleanPath, p.root+string(filepath.Separator)) {
		return 0, errInvalidStatsPath
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path validated above
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
}

// AddressInfo implements Provider.
func (p *SysfsProvider) AddressInfo(_ context.Context, name string) (AddressInfo, error) {
	addrs, flags, err := p.addrs(name)
	if err != nil {
		// A vanished interface is reported as having no address.
		return UnknownAddress(name), nil
	}

	info := ipv4FromAddrs(name, addrs)
	info.Up = flags&net.FlagUp != 0
	return info, nil
}

func kernelAddrs(name string) ([]net.Addr, net.Flags, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, 0, err
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, 0, err
	}
	return addrs, iface.Flags, nil
}
