package analysis

import (
	"strconv"

	"github.com/chrissnell/oceanlab/pkg/geo"
)

func modeName(m int) string {
	return "mode_" + strconv.Itoa(m)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// formatLon labels a longitude column as 160°E / 120°W
func formatLon(lon float64) string {
	return geo.LonLabel(lon)
}
