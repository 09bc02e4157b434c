package terrain

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Grid is a heightmap-backed sampler. Heights are stored row-major on a
// regular lattice with the given cell size; elevation between lattice points
// is bilinearly interpolated and the gradient is estimated with central
// differences. Positions outside the lattice are undefined.
type Grid struct {
	heights  []float64
	cols     int
	rows     int
	cellSize float64
	origin   r2.Point
}

// NewGrid builds a grid terrain from row-major height data.
func NewGrid(heights []float64, cols, rows int, cellSize float64, origin r2.Point) (*Grid, error) {
	if cols < 2 || rows < 2 {
		return nil, fmt.Errorf("terrain grid needs at least 2x2 samples, got %dx%d", cols, rows)
	}
	if len(heights) != cols*rows {
		return nil, fmt.Errorf("terrain grid expects %d heights, got %d", cols*rows, len(heights))
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("terrain grid cell size must be positive, got %f", cellSize)
	}
	return &Grid{
		heights:  heights,
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		origin:   origin,
	}, nil
}

// GenerateGrid fills a grid by evaluating f at every lattice point.
func GenerateGrid(cols, rows int, cellSize float64, origin r2.Point, f func(x, y float64) float64) (*Grid, error) {
	heights := make([]float64, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := origin.X + float64(col)*cellSize
			y := origin.Y + float64(row)*cellSize
			heights[row*cols+col] = f(x, y)
		}
	}
	return NewGrid(heights, cols, rows, cellSize, origin)
}

func (g *Grid) at(col, row int) float64 {
	return g.heights[row*g.cols+col]
}

// SampleAt implements Sampler.
func (g *Grid) SampleAt(p r2.Point) (Sample, bool) {
	fx := (p.X - g.origin.X) / g.cellSize
	fy := (p.Y - g.origin.Y) / g.cellSize
	if fx < 0 || fy < 0 || fx > float64(g.cols-1) || fy > float64(g.rows-1) {
		return Sample{}, false
	}

	col := int(fx)
	row := int(fy)
	if col >= g.cols-1 {
		col = g.cols - 2
	}
	if row >= g.rows-1 {
		row = g.rows - 2
	}
	tx := fx - float64(col)
	ty := fy - float64(row)

	h00 := g.at(col, row)
	h10 := g.at(col+1, row)
	h01 := g.at(col, row+1)
	h11 := g.at(col+1, row+1)

	top := h00 + (h10-h00)*tx
	bottom := h01 + (h11-h01)*tx
	elevation := top + (bottom-top)*ty

	// gradient from the bilinear patch
	dx := ((h10 - h00) + ((h11 - h01) - (h10 - h00))*ty) / g.cellSize
	dy := ((h01 - h00) + ((h11 - h10) - (h01 - h00))*tx) / g.cellSize

	return Sample{Elevation: elevation, Gradient: r2.Point{X: dx, Y: dy}}, true
}
