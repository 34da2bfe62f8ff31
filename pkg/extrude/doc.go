// Package extrude builds triangle meshes from flat shapes.
//
// Each builder takes a slice of shapes and an options struct, builds one
// mesh.Buffers per shape, and merges them. Zero sizes in an options struct
// take the builder's default; booleans and angles are used as given, so
// start from the Default*Options functions when the defaults for those
// matter. Results echo the normalized copies of their input; caller
// slices are never modified.
package extrude
