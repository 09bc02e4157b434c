package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lintang-b-s/terraroad/pkg/datastructure"
	"github.com/lintang-b-s/terraroad/pkg/engine/growth"
	"github.com/lintang-b-s/terraroad/pkg/terrain"
)

var (
	seed     = flag.Uint64("seed", 1, "generation seed")
	outFile  = flag.String("out", "network.geojson", "geojson output file")
	maxNodes = flag.Int("maxnodes", 1500, "node bound of the run")
	maxEdges = flag.Int("maxedges", 3000, "edge bound of the run")
	cols     = flag.Int("cols", 200, "terrain grid columns")
	rows     = flag.Int("rows", 200, "terrain grid rows")
	cellSize = flag.Float64("cellsize", 30, "terrain grid cell size")
	relief   = flag.Float64("relief", 25, "synthetic terrain amplitude")
)

// synthHeight is a smooth multi-octave height function. It stands in for a
// raster DEM; swap in terrain.NewGrid over real height data for real runs.
func synthHeight(amplitude float64) func(x, y float64) float64 {
	return func(x, y float64) float64 {
		h := amplitude * math.Sin(x/220) * math.Cos(y/260)
		h += 0.4 * amplitude * math.Sin(x/70+1.3) * math.Sin(y/90)
		h += 0.15 * amplitude * math.Cos(x/31) * math.Sin(y/37+0.7)
		return h
	}
}

func main() {
	flag.Parse()

	grid, err := terrain.GenerateGrid(*cols, *rows, *cellSize, r2.Point{X: 0, Y: 0}, synthHeight(*relief))
	if err != nil {
		log.Fatal(err)
	}

	cfg := growth.DefaultConfig()
	cfg.Seed = *seed
	cfg.MaxNodes = *maxNodes
	cfg.MaxEdges = *maxEdges

	reg := prometheus.NewRegistry()
	eng, err := growth.NewEngine(cfg, grid, growth.NewTelemetry(reg))
	if err != nil {
		log.Fatal(err)
	}

	center := r2.Point{
		X: float64(*cols-1) * *cellSize / 2,
		Y: float64(*rows-1) * *cellSize / 2,
	}
	if _, err := eng.AddOrigin(center, s1.Angle(0)); err != nil {
		log.Fatal(err)
	}

	sum := eng.Grow()
	log.Printf("generation finished: %s, %d nodes, %d edges (%d candidates, %d rejected, %d blocked)",
		sum.Status, sum.Nodes, sum.Edges,
		sum.CandidatesEvaluated, sum.CandidatesRejected, sum.CandidatesBlocked)

	if err := writeGeoJSON(*outFile, eng.Network()); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("network written to %s\n", *outFile)
}

func writeGeoJSON(path string, net *datastructure.RoadNetwork) error {
	fc := geojson.NewFeatureCollection()

	for _, id := range net.EdgeIDs() {
		edge, _ := net.Edge(id)
		line := make(orb.LineString, 0, len(edge.Geometry))
		for _, p := range edge.Geometry {
			line = append(line, orb.Point{p.X, p.Y})
		}
		f := geojson.NewFeature(line)
		f.Properties["id"] = int(edge.ID)
		f.Properties["kind"] = edge.Kind.String()
		f.Properties["length"] = edge.Metrics.Length
		f.Properties["avg_grade"] = edge.Metrics.AvgGrade
		f.Properties["polyline"] = datastructure.RenderPath(edge.Geometry)
		fc.Append(f)
	}

	for _, id := range net.NodeIDs() {
		node, _ := net.Node(id)
		f := geojson.NewFeature(orb.Point{node.Pos.X, node.Pos.Y})
		f.Properties["id"] = int(node.ID)
		f.Properties["elevation"] = node.Elevation
		f.Properties["leveled"] = node.Leveled
		f.Properties["degree"] = node.Degree()
		fc.Append(f)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshaling network geojson: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
