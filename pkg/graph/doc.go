// Package graph defines the scene graph produced by evaluating a script.
// A scene is a DAG of shape, solid, transform and group nodes. Shape nodes
// carry the input of one shape builder, solid nodes the input of the
// solid-modelling kernel.
package graph
