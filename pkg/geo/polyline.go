package geo

import (
	"math"

	"github.com/lintang-b-s/wayfinder/pkg/util"
	"github.com/twpayne/go-polyline"
)

// Position is a single decoded path vertex in (lon, lat) order, matching
// geojson-style geometry consumers.
type Position [2]float64

func NewPosition(lon, lat float64) Position {
	return Position{lon, lat}
}

func (p Position) Lon() float64 {
	return p[0]
}

func (p Position) Lat() float64 {
	return p[1]
}

/*
DecodePolyline. decode a google/osrm encoded polyline string into (lon, lat)
positions. each coordinate is a sequence of 5-bit groups (byte value offset by
-63), least significant group first; a set 0x20 bit means more groups follow.
the reassembled integer is zig-zag encoded: LSB is the sign bit. groups come in
lat-delta, lon-delta pairs and deltas accumulate into running integers scaled
by 10^precision.

a string that ends while the continuation bit is still set is malformed and
returns ErrDecode.
*/
func DecodePolyline(encoded string, precision int) ([]Position, error) {
	factor := math.Pow10(precision)

	var (
		positions []Position
		lat, lon  int64
		index     int
	)

	readDelta := func() (int64, bool) {
		var (
			result int64
			shift  uint
		)
		for {
			if index >= len(encoded) {
				return 0, false
			}
			b := int64(encoded[index]) - 63
			index++

			result |= (b & 0x1f) << shift
			shift += 5
			if b&0x20 == 0 {
				break
			}
		}
		if result&1 != 0 {
			return ^(result >> 1), true
		}
		return result >> 1, true
	}

	for index < len(encoded) {
		dLat, ok := readDelta()
		if !ok {
			return nil, util.WrapErrorf(nil, util.ErrDecode,
				"encoded path ends mid-group at offset %d", index)
		}
		dLon, ok := readDelta()
		if !ok {
			return nil, util.WrapErrorf(nil, util.ErrDecode,
				"encoded path ends mid-group at offset %d", index)
		}

		lat += dLat
		lon += dLon
		positions = append(positions, NewPosition(float64(lon)/factor, float64(lat)/factor))
	}

	return positions, nil
}

// PolylineFromCoords. encode path coordinates into a polyline string (precision 5).
func PolylineFromCoords(coords []Coordinate) string {
	latLngs := make([][]float64, len(coords))
	for i, c := range coords {
		latLngs[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(latLngs))
}
