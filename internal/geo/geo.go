// Package geo converts the launch pad position and recorded flight
// profiles into web-map friendly geometry. Everything is stored in
// EPSG:3857 so SQLite rows and exported files need no spatial
// awareness on the reading side.
package geo

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/liftoff-sim/simcore/pkg/core"
)

// ErrNoSamples is returned when a profile is built from an empty
// sample set.
var ErrNoSamples = errors.New("no flight samples provided")

// PadLocation3857 converts a pad position given in EPSG:4326
// longitude/latitude into EPSG:3857 meters.
func PadLocation3857(longitude, latitude float64) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(longitude, latitude, 0)
	return x, y
}

// PadPoint3857 is PadLocation3857 packaged as a geometry point for
// export files.
func PadPoint3857(longitude, latitude float64) geom.Point {
	x, y := PadLocation3857(longitude, latitude)
	return geom.NewPoint(
		geom.Coordinates{
			XY: geom.XY{X: x, Y: y},
			Z:  0,
		},
	)
}

// AltitudeProfile builds a LineString over the recorded samples with
// mission time on X and altitude on Y, for rendering the ascent curve.
func AltitudeProfile(samples []core.FlightData) (geom.LineString, error) {
	if len(samples) == 0 {
		return geom.LineString{}, ErrNoSamples
	}

	coords := make([]float64, 0, len(samples)*2)
	for _, s := range samples {
		coords = append(coords, s.MissionTime, s.Altitude)
	}

	seq := geom.NewSequence(coords, geom.DimXY)
	return geom.NewLineString(seq), nil
}
