package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtentCenter(t *testing.T) {
	e := Extent{XMin: -10, YMin: 40, XMax: 10, YMax: 50}
	assert.Equal(t, Point{X: 0, Y: 45}, e.Center())
}

func TestBuiltinIdentityForWGS84(t *testing.T) {
	for _, crs := range []string{"EPSG:4326", "epsg:4326", "OGC:CRS84", ""} {
		c, err := Builtin{}.Project(Point{X: 2.35, Y: 48.85}, crs)
		require.NoError(t, err, crs)
		assert.Equal(t, 48.85, c.Latitude)
		assert.Equal(t, 2.35, c.Longitude)
	}
}

func TestBuiltinWebMercator(t *testing.T) {
	// Paris, from EPSG:3857.
	c, err := Builtin{}.Project(Point{X: 261845.7, Y: 6250564.3}, "EPSG:3857")
	require.NoError(t, err)
	assert.InDelta(t, 48.8566, c.Latitude, 1e-3)
	assert.InDelta(t, 2.3522, c.Longitude, 1e-3)

	c, err = Builtin{}.Project(Point{X: 0, Y: 0}, "EPSG:900913")
	require.NoError(t, err)
	assert.InDelta(t, 0, c.Latitude, 1e-9)
	assert.InDelta(t, 0, c.Longitude, 1e-9)
}

func TestBuiltinWrapsLongitude(t *testing.T) {
	// One full world width east of 10°E.
	x := (10.0 + 360.0) * earthRadius * 3.141592653589793 / 180
	c, err := Builtin{}.Project(Point{X: x, Y: 0}, "EPSG:3857")
	require.NoError(t, err)
	assert.InDelta(t, 10, c.Longitude, 1e-6)
}

func TestBuiltinUnsupported(t *testing.T) {
	_, err := Builtin{}.Project(Point{X: 1, Y: 1}, "EPSG:2154")
	assert.ErrorIs(t, err, ErrUnsupportedCRS)
}

func TestBuiltinWrapsWGS84Longitude(t *testing.T) {
	e := Extent{XMin: 170, YMin: 10, XMax: 230, YMax: 20}
	c, err := Builtin{}.Project(e.Center(), "EPSG:4326")
	require.NoError(t, err)
	assert.InDelta(t, -160, c.Longitude, 1e-9)
	assert.InDelta(t, 15, c.Latitude, 1e-9)

	assert.InDelta(t, 170, FromWGS84(Point{X: -190}).Longitude, 1e-9)
	assert.Equal(t, 180.0, FromWGS84(Point{X: 180}).Longitude)
}

func TestWebMercatorIdentifiers(t *testing.T) {
	for _, crs := range []string{"EPSG:3857", "epsg:3857", "EPSG:900913", "ESRI:102100", "EPSG:102113", "urn:ogc:def:crs:EPSG::3857", "3857"} {
		_, err := Builtin{}.Project(Point{X: 0, Y: 0}, crs)
		assert.NoError(t, err, crs)
	}
	for _, crs := range []string{"EPSG:38570", "EPSG:13857", "EPSG:1021000", "IGNF:3857", "LOCAL:102100", "EPSG:"} {
		_, err := Builtin{}.Project(Point{X: 0, Y: 0}, crs)
		assert.ErrorIs(t, err, ErrUnsupportedCRS, crs)
	}
}
