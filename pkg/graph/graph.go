package graph

import (
	"fmt"

	"github.com/samber/lo"
)

// Scene is the data structure produced by script evaluation. Each
// evaluation produces a new scene.
type Scene struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`

	// Order lists node IDs in insertion order, which keeps traversal and
	// output deterministic.
	Order []NodeID `json:"order"`
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the scene. Adding an ID twice replaces the node
// but keeps its original position in Order.
func (s *Scene) AddNode(n *Node) {
	if _, ok := s.Nodes[n.ID]; !ok {
		s.Order = append(s.Order, n.ID)
	}
	s.Nodes[n.ID] = n
	if n.Name != "" {
		s.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the scene.
func (s *Scene) AddRoot(id NodeID) {
	s.Roots = append(s.Roots, id)
}

// ResolveRoots adds every node that is neither a root nor a child of
// another node to Roots, in insertion order.
func (s *Scene) ResolveRoots() {
	referenced := make(map[NodeID]bool)
	for _, n := range s.Nodes {
		for _, c := range n.Children {
			referenced[c] = true
		}
	}
	for _, id := range s.Order {
		if !referenced[id] && !lo.Contains(s.Roots, id) {
			s.Roots = append(s.Roots, id)
		}
	}
}

// Lookup returns the node with the given user-assigned name, or nil.
func (s *Scene) Lookup(name string) *Node {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (s *Scene) MustLookup(name string) *Node {
	n := s.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (s *Scene) Get(id NodeID) *Node {
	return s.Nodes[id]
}

// Leaves returns all shape and solid nodes in insertion order.
func (s *Scene) Leaves() []*Node {
	return lo.FilterMap(s.Order, func(id NodeID, _ int) (*Node, bool) {
		n := s.Nodes[id]
		return n, n != nil && (n.Kind == NodeShape || n.Kind == NodeSolid)
	})
}

// Children returns the child nodes of the given node.
func (s *Scene) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := s.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (s *Scene) NodeCount() int {
	return len(s.Nodes)
}
