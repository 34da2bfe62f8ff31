package main

import (
	"encoding/json"
	"fmt"

	"github.com/chazu/polymesh/pkg/earcut"
	"github.com/chazu/polymesh/pkg/geom"
	"github.com/spf13/cobra"
)

// triangulation is the JSON output of the triangulate command. Indices
// refer to the input points in ring order.
type triangulation struct {
	Triangles []int   `json:"triangles"`
	Deviation float64 `json:"deviation"`
	Count     int     `json:"count"`
}

func newTriangulateCmd(root *rootOptions) *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "triangulate <polygon.json>",
		Short: "Triangulate a polygon given as JSON rings",
		Long: "Triangulate a polygon given as a JSON array of rings, outer ring first:\n\n" +
			"  [[[0,0],[10,0],[10,10],[0,10]], [[2,2],[2,8],[8,8],[8,2]]]\n\n" +
			"Prints the triangle indices and the area deviation (0 is exact).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := root.logger(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			poly, err := parseRings(data)
			if err != nil {
				return err
			}

			flat, holes := geom.Flatten(poly)
			tris, err := earcut.Triangulate(flat, holes, 2)
			if err != nil {
				return err
			}
			out := triangulation{
				Triangles: tris,
				Deviation: earcut.Deviation(flat, holes, 2, tris),
				Count:     len(tris) / 3,
			}
			logger.Debug("triangulated", "rings", len(poly), "points", poly.PointCount(), "triangles", out.Count)
			return writeJSON(cmd, "", indent, out)
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the JSON output")
	return cmd
}

// parseRings decodes [[[x,y],...],...] into a polygon. A closing point
// equal to the first is dropped.
func parseRings(data []byte) (geom.Polygon, error) {
	var rings [][][]float64
	if err := json.Unmarshal(data, &rings); err != nil {
		return nil, fmt.Errorf("triangulate: %w", err)
	}
	poly := make(geom.Polygon, 0, len(rings))
	for i, r := range rings {
		ring := make(geom.Ring, 0, len(r))
		for j, c := range r {
			if len(c) < 2 {
				return nil, fmt.Errorf("triangulate: ring %d point %d has %d coordinates", i, j, len(c))
			}
			ring = append(ring, geom.Pt(c[0], c[1]))
		}
		poly = append(poly, ring.Open())
	}
	if err := poly.Validate(); err != nil {
		return nil, fmt.Errorf("triangulate: %w", err)
	}
	return poly, nil
}
