// Package geo has point-in-polygon selection and map axis labelling.
package geo

import (
	"math"
	"strconv"
)

// Point is a geographic position in degrees
type Point struct {
	Lon float64
	Lat float64
}

// Polygon is a closed ring of vertices; the last vertex connects back to the first
type Polygon []Point

// ContainsPoint reports whether p lies inside poly using the even-odd rule
func ContainsPoint(poly Polygon, p Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			cross := (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lon
			if p.Lon < cross {
				inside = !inside
			}
		}
	}
	return inside
}

// FilterPoints returns the indices of the points inside poly
func FilterPoints(points []Point, poly Polygon) []int {
	var keep []int
	for i, p := range points {
		if ContainsPoint(poly, p) {
			keep = append(keep, i)
		}
	}
	return keep
}

// Bounds is a lon/lat box (west, east, south, north)
type Bounds struct {
	West, East, South, North float64
}

// GlobalBounds covers the whole globe
var GlobalBounds = Bounds{West: -180, East: 180, South: -90, North: 90}

// Tick is an axis position with its label
type Tick struct {
	Value float64
	Label string
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64) + "°"
}

// LonLabel formats a longitude as 160°E, 20°W, 0° or 180°. Longitudes
// outside (-180, 180] are wrapped first.
func LonLabel(lon float64) string {
	lon = math.Mod(lon+180, 360)
	if lon <= 0 {
		lon += 360
	}
	lon -= 180
	switch {
	case lon == 0, lon == 180:
		return formatDegrees(math.Abs(lon))
	case lon < 0:
		return formatDegrees(-lon) + "W"
	}
	return formatDegrees(lon) + "E"
}

// LatLabel formats a latitude as 10°N, 5°S or 0°
func LatLabel(lat float64) string {
	switch {
	case lat == 0:
		return formatDegrees(0)
	case lat < 0:
		return formatDegrees(-lat) + "S"
	}
	return formatDegrees(lat) + "N"
}

// Ticks returns lo, lo+step, … up to but excluding hi
func Ticks(lo, hi, step float64) []float64 {
	if step <= 0 || hi <= lo {
		return nil
	}
	n := int(math.Ceil((hi - lo) / step))
	ticks := make([]float64, n)
	for i := range ticks {
		ticks[i] = lo + float64(i)*step
	}
	return ticks
}

// LatLonTicks returns labelled longitude and latitude ticks for a map of bounds
func LatLonTicks(bounds Bounds, lonStep, latStep float64) (lon, lat []Tick) {
	for _, v := range Ticks(bounds.West, bounds.East, lonStep) {
		lon = append(lon, Tick{Value: v, Label: LonLabel(v)})
	}
	for _, v := range Ticks(bounds.South, bounds.North, latStep) {
		lat = append(lat, Tick{Value: v, Label: LatLabel(v)})
	}
	return lon, lat
}
