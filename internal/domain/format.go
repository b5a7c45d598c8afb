package domain

import (
	"strconv"
)

var fileSizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with base-1024 units and at most two decimals.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(fileSizeUnits)-1 {
		value /= 1024
		unit++
	}

	return strconv.FormatFloat(roundTo(value, 2), 'f', -1, 64) + " " + fileSizeUnits[unit]
}

func roundTo(v float64, decimals int) float64 {
	scale := 1.0
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+0.5)) / scale
}
