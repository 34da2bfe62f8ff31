// Package geom defines the planar and spatial value types consumed by the
// mesh builders: points, rings, polylines and polygons with holes.
//
// All helpers in this package return fresh slices. Caller input is never
// modified in place.
package geom
