package sizes

import "fmt"

// FormatBytes renders n as a human-readable size with 1024-based binary
// prefixes and one decimal place, e.g. 1536 -> "1.5KiB", 0 -> "0.0B".
func FormatBytes(n uint64) string {
	v := float64(n)
	for _, unit := range []string{"", "Ki", "Mi", "Gi", "Ti", "Pi", "Ei", "Zi"} {
		if v < 1024.0 {
			return fmt.Sprintf("%3.1f%sB", v, unit)
		}
		v /= 1024.0
	}
	return fmt.Sprintf("%.1fYiB", v)
}
