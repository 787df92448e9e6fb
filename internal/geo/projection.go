// Package geo converts map-view positions into WGS84 latitude/longitude.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/i474232898/weather-dock/internal/common"
	"github.com/i474232898/weather-dock/internal/weather"
)

// WGS84 is the identifier of the geographic reference system the forecast API expects.
const WGS84 = "EPSG:4326"

// earthRadius is the sphere radius used by Web Mercator, in meters.
const earthRadius = 6378137.0

var ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")

// Point is a position expressed in the units of its reference system.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Extent is the rectangular area visible in the map view.
type Extent struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// Center returns the midpoint of the extent.
func (e Extent) Center() Point {
	return Point{
		X: (e.XMin + e.XMax) / 2,
		Y: (e.YMin + e.YMax) / 2,
	}
}

// Projector turns a point in sourceCRS into WGS84 coordinates. Implementations are pure.
type Projector interface {
	Project(p Point, sourceCRS string) (weather.Coordinates, error)
}

// ProjectorFunc adapts a function to Projector.
type ProjectorFunc func(p Point, sourceCRS string) (weather.Coordinates, error)

func (f ProjectorFunc) Project(p Point, sourceCRS string) (weather.Coordinates, error) {
	return f(p, sourceCRS)
}

// Builtin handles geographic WGS84 and spherical Web Mercator, which covers
// the reference systems browser map viewers work in.
type Builtin struct{}

var _ Projector = Builtin{}

func (Builtin) Project(p Point, sourceCRS string) (weather.Coordinates, error) {
	switch {
	case IsWGS84(sourceCRS):
		return FromWGS84(p), nil
	case isWebMercator(sourceCRS):
		return fromWebMercator(p), nil
	default:
		return weather.Coordinates{}, fmt.Errorf("%w: %q", ErrUnsupportedCRS, sourceCRS)
	}
}

// IsWGS84 reports whether crs names the geographic WGS84 system. An empty
// identifier is treated as WGS84.
func IsWGS84(crs string) bool {
	switch strings.ToUpper(strings.TrimSpace(crs)) {
	case "", WGS84, "CRS:84", "OGC:CRS84", "WGS84", "URN:OGC:DEF:CRS:EPSG::4326":
		return true
	}
	return false
}

// FromWGS84 reads a WGS84 point as coordinates, wrapping the longitude of
// views panned past the antimeridian.
func FromWGS84(p Point) weather.Coordinates {
	return weather.Coordinates{Latitude: p.Y, Longitude: normalizeLongitude(p.X)}
}

var webMercatorCodes = map[string]bool{
	"3857":   true,
	"900913": true,
	"102100": true,
	"102113": true,
}

// isWebMercator matches the numeric code exactly, with or without an
// EPSG/ESRI authority ("EPSG:3857", "urn:ogc:def:crs:EPSG::3857", "3857").
func isWebMercator(crs string) bool {
	crs = strings.TrimSpace(crs)
	authority, code := "", crs
	if i := strings.LastIndex(crs, ":"); i >= 0 {
		authority, code = crs[:i], crs[i+1:]
	}
	if !webMercatorCodes[code] {
		return false
	}
	return authority == "" || common.HasAny(authority, "EPSG", "ESRI")
}

func fromWebMercator(p Point) weather.Coordinates {
	lon := p.X / earthRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(p.Y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return weather.Coordinates{Latitude: lat, Longitude: normalizeLongitude(lon)}
}

// normalizeLongitude wraps lon into [-180, 180]; panning past the antimeridian
// produces larger values.
func normalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
