package datastructure

import (
	"github.com/golang/geo/r2"
	"github.com/twpayne/go-polyline"
)

// RenderPath encodes an edge geometry as a google encoded polyline string,
// for consumption by rendering/serialization collaborators.
func RenderPath(path []r2.Point) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Y, p.X})
	}
	return string(polyline.EncodeCoords(coords))
}
