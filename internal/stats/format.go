package stats

import (
	"fmt"
	"math"
	"time"
)

// byteUnits are the labels FormatBytes steps through, each 1024 times the previous.
var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders a byte count with two decimals and an automatically
// chosen unit, e.g. "512.00 B", "2.00 KB", "3.00 MB". Values beyond the GB
// range stay in GB. Negative and NaN inputs are treated as zero.
func FormatBytes(byteSize float64) string {
	if byteSize < 0 || math.IsNaN(byteSize) {
		byteSize = 0
	}

	unit := 0
	for byteSize >= 1024 && unit < len(byteUnits)-1 {
		byteSize /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", byteSize, byteUnits[unit])
}

// FormatRate formats a bytes-per-second rate, e.g. "1.50 KB/s".
func FormatRate(bytesPerSec float64) string {
	return FormatBytes(bytesPerSec) + "/s"
}

// FormatDuration formats a duration in a human-readable format.
// Returns formats like "1h 23m 45s", "23m 45s", or "45s" depending on duration.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "0s"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
