package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks
// tessellation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if scene-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result has no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the Tier 1 structural checks and returns every finding.
// An empty slice means the scene is valid. It never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(s)...)
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateNames(s)...)
	errs = append(errs, validateRoots(s)...)
	errs = append(errs, validateKinds(s)...)
	errs = append(errs, validateBooleans(s)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and returns a
// ValidationResult with errors and warnings separated.
func ValidateAll(s *Scene) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(s) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{NodeID: e.NodeID, Message: e.Message})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	errs, warnings := validateGeometry(s)
	result.Errors = append(result.Errors, errs...)
	result.Warnings = append(result.Warnings, warnings...)
	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(s *Scene) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		if node, ok := s.Nodes[id]; ok {
			for _, childID := range node.Children {
				if visit(childID) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range s.Order {
		if color[id] == white && visit(id) {
			// One cycle error is sufficient.
			break
		}
	}
	return errs
}

// validateReferences checks that every child reference points to an
// existing node.
func validateReferences(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.Order {
		node := s.Nodes[id]
		for _, childID := range node.Children {
			if _, ok := s.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that every NameIndex entry points to an existing
// node and that no two nodes share a name.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError

	for name, id := range s.NameIndex {
		if _, ok := s.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for _, id := range s.Order {
		if n := s.Nodes[id]; n.Name != "" {
			nameToNodes[n.Name] = append(nameToNodes[n.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that every root exists and warns about nodes that
// no root reaches.
func validateRoots(s *Scene) []ValidationError {
	var errs []ValidationError

	reachable := make(map[NodeID]bool)
	var queue []NodeID
	for _, rid := range s.Roots {
		if _, ok := s.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		node := s.Nodes[queue[0]]
		queue = queue[1:]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for _, id := range s.Order {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", s.Nodes[id].Label()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateKinds checks that each node's payload matches its kind and that
// leaves have no children.
func validateKinds(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.Order {
		n := s.Nodes[id]
		want, ok := kindOf(n.Data)
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("unsupported payload %T", n.Data),
				Severity: SeverityError,
			})
		case want != n.Kind:
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("%s node carries %s payload %T", n.Kind, want, n.Data),
				Severity: SeverityError,
			})
		case n.Kind == NodeShape && len(n.Children) > 0,
			n.Kind == NodeSolid && len(n.Children) > 0 && !isBoolean(n):
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("%s node %q cannot have children", n.Kind, n.Label()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// kindOf returns the node kind a payload belongs to.
func kindOf(d NodeData) (NodeKind, bool) {
	switch d.(type) {
	case PolygonData, LineData, SlopeData, PathData, TubeData, SweepData, PlaneData, CylinderData:
		return NodeShape, true
	case BoxData, RodData, BooleanData:
		return NodeSolid, true
	case TransformData:
		return NodeTransform, true
	case GroupData:
		return NodeGroup, true
	}
	return 0, false
}

func isBoolean(n *Node) bool {
	_, ok := n.Data.(BooleanData)
	return ok
}

// validateBooleans checks that every boolean has exactly two operands and
// that each operand is a solid, possibly placed by transforms.
func validateBooleans(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.Order {
		n := s.Nodes[id]
		bd, ok := n.Data.(BooleanData)
		if !ok {
			continue
		}
		if len(n.Children) != 2 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("%s needs exactly 2 operands, got %d", bd.Op, len(n.Children)),
				Severity: SeverityError,
			})
			continue
		}
		for i, cid := range n.Children {
			if c := s.Nodes[cid]; c != nil && !IsSolidTree(s, c) {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("%s operand %d (%s) is not a solid", bd.Op, i, c.Label()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// IsSolidTree reports whether n is a solid, or a transform whose single
// child is a solid tree.
func IsSolidTree(s *Scene, n *Node) bool {
	seen := make(map[NodeID]bool)
	for n != nil && !seen[n.ID] {
		seen[n.ID] = true
		switch n.Kind {
		case NodeSolid:
			return true
		case NodeTransform:
			if len(n.Children) != 1 {
				return false
			}
			n = s.Nodes[n.Children[0]]
		default:
			return false
		}
	}
	return false
}
