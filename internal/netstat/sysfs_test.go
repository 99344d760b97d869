package netstat

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeIface creates <root>/<name>/statistics/{rx,tx}_bytes.
func writeIface(t *testing.T, root, name string, rx, tx uint64) {
	t.Helper()

	dir := filepath.Join(root, name, "statistics")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rx_bytes"), []byte(strconv.FormatUint(rx, 10)+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tx_bytes"), []byte(strconv.FormatUint(tx, 10)+"\n"), 0644))
}

func newFakeSysfs(t *testing.T) (*SysfsProvider, string) {
	t.Helper()

	root := t.TempDir()
	writeIface(t, root, "lo", 5000, 5000)
	writeIface(t, root, "eth0", 1000, 200)
	writeIface(t, root, "wlan0", 300, 40)
	return NewSysfsProvider(root), root
}

func TestSysfsProvider_Interfaces(t *testing.T) {
	p, _ := newFakeSysfs(t)

	names, err := p.Interfaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"eth0", "lo", "wlan0"}, names)
}

func TestSysfsProvider_Interfaces_MissingRoot(t *testing.T) {
	p := NewSysfsProvider(filepath.Join(t.TempDir(), "absent"))

	_, err := p.Interfaces(context.Background())
	assert.Error(t, err)
}

func TestSysfsProvider_Counters(t *testing.T) {
	p, _ := newFakeSysfs(t)
	ctx := context.Background()

	snap, ok, err := p.Counters(ctx, "eth0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Snapshot{BytesSent: 200, BytesRecv: 1000}, snap)

	t.Run("system-wide excludes loopback", func(t *testing.T) {
		snap, ok, err := p.Counters(ctx, "")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, Snapshot{BytesSent: 240, BytesRecv: 1300}, snap)
	})

	t.Run("missing interface is zero, not an error", func(t *testing.T) {
		snap, ok, err := p.Counters(ctx, "eth9")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, Snapshot{}, snap)
	})
}

func TestSysfsProvider_Counters_FollowsUpdates(t *testing.T) {
	p, root := newFakeSysfs(t)

	writeIface(t, root, "eth0", 4096, 1024)

	snap, ok, err := p.Counters(context.Background(), "eth0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Snapshot{BytesSent: 1024, BytesRecv: 4096}, snap)
}

func TestSysfsProvider_Counters_Malformed(t *testing.T) {
	p, root := newFakeSysfs(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "eth0", "statistics", "rx_bytes"), []byte("garbage"), 0644))

	_, ok, err := p.Counters(context.Background(), "eth0")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestReadStatFile_PathTraversal(t *testing.T) {
	p := NewSysfsProvider("")

	tests := []struct {
		name        string
		path        string
		expectError bool
	}{
		{
			name:        "valid sysfs path",
			path:        "/sys/class/net/eth0/statistics/rx_bytes",
			expectError: false, // may still fail to read, but the path is accepted
		},
		{
			name:        "path traversal attempt",
			path:        "/sys/class/net/../../../etc/passwd",
			expectError: true,
		},
		{
			name:        "absolute path outside sysfs",
			path:        "/etc/passwd",
			expectError: true,
		},
		{
			name:        "relative path traversal",
			path:        "/sys/class/net/eth0/../../shadow",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.readStatFile(tt.path)
			if tt.expectError {
				assert.ErrorIs(t, err, errInvalidStatsPath)
			} else {
				assert.NotErrorIs(t, err, errInvalidStatsPath)
			}
		})
	}
}

func TestSysfsProvider_Counters_TraversalName(t *testing.T) {
	p, _ := newFakeSysfs(t)

	_, ok, err := p.Counters(context.Background(), "../../etc")
	assert.ErrorIs(t, err, errInvalidStatsPath)
	assert.False(t, ok)
}

func TestSysfsProvider_AddressInfo(t *testing.T) {
	p, _ := newFakeSysfs(t)
	p.addrs = func(name string) ([]net.Addr, net.Flags, error) {
		switch name {
		case "wlan0":
			return []net.Addr{
				&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)},
				&net.IPNet{IP: net.ParseIP("192.168.1.23"), Mask: net.CIDRMask(24, 32)},
			}, net.FlagUp | net.FlagBroadcast, nil
		case "eth0":
			return nil, 0, nil
		default:
			return nil, 0, errors.New("no such network interface")
		}
	}
	ctx := context.Background()

	info, err := p.AddressInfo(ctx, "wlan0")
	require.NoError(t, err)
	assert.Equal(t, AddressInfo{Name: "wlan0", IPv4: "192.168.1.23", Netmask: "255.255.255.0", Up: true}, info)

	again, err := p.AddressInfo(ctx, "wlan0")
	require.NoError(t, err)
	assert.Equal(t, info, again, "lookup must be idempotent")

	info, err = p.AddressInfo(ctx, "eth0")
	require.NoError(t, err)
	assert.Equal(t, UnknownAddress("eth0"), info)

	info, err = p.AddressInfo(ctx, "gone0")
	require.NoError(t, err)
	assert.Equal(t, NotAvailable, info.IPv4)
	assert.Equal(t, NotAvailable, info.Netmask)
	assert.False(t, info.Up)
}
