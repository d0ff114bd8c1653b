package utils

import "fmt"

const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB
	TB = 1024 * GB
)

var sizeUnits = []struct {
	limit int64
	unit  string
}{
	{TB, "TB"},
	{GB, "GB"},
	{MB, "MB"},
	{KB, "KB"},
}

// FormatSize renders a byte count with one decimal in the largest fitting
// binary unit. Negative counts render as "0 B".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}
	for _, u := range sizeUnits {
		if bytes >= u.limit {
			return fmt.Sprintf("%.1f %s", float64(bytes)/float64(u.limit), u.unit)
		}
	}
	return fmt.Sprintf("%d B", bytes)
}
