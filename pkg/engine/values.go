package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values between builtins
// ---------------------------------------------------------------------------

// sexpPoint wraps a point made by vec2 or vec3.
type sexpPoint struct {
	p geom.Point
}

func (v *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.p.X, v.p.Y, v.p.Z)
}
func (v *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpRing wraps a closed ring.
type sexpRing struct {
	ring geom.Ring
}

func (r *sexpRing) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(ring <%d points>)", len(r.ring))
}
func (r *sexpRing) Type() *zygo.RegisteredType { return nil }

// sexpPolygon wraps an outer ring and its holes.
type sexpPolygon struct {
	poly geom.Polygon
}

func (p *sexpPolygon) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(polygon <%d rings>)", len(p.poly))
}
func (p *sexpPolygon) Type() *zygo.RegisteredType { return nil }

// sexpLine wraps an open polyline, also used as a 3D spine.
type sexpLine struct {
	line geom.Polyline
}

func (l *sexpLine) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(line <%d points>)", len(l.line))
}
func (l *sexpLine) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// flagSet is the value of a keyword given last with no value.
var flagSet = &zygo.SexpBool{Val: true}

// isKW checks if a Sexp is a preprocessed keyword string.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a form's arguments split into keywords and positionals.
type kwArgs struct {
	form       string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// keyword takes the argument after it as its value.
func parseArgs(form string, args []zygo.Sexp) kwArgs {
	result := kwArgs{form: form, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = flagSet
		}
	}
	return result
}

func (pa kwArgs) errorf(key string, err error) error {
	return fmt.Errorf("%s: %s: %w", pa.form, key, err)
}

// float sets *dst when key is present.
func (pa kwArgs) float(key string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return pa.errorf(key, err)
	}
	*dst = f
	return nil
}

func (pa kwArgs) int(key string, dst *int) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		return pa.errorf(key, err)
	}
	*dst = n
	return nil
}

func (pa kwArgs) bool(key string, dst *bool) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	b, err := toBool(v)
	if err != nil {
		return pa.errorf(key, err)
	}
	*dst = b
	return nil
}

func (pa kwArgs) point(key string, dst *geom.Point) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	p, err := toPoint(v)
	if err != nil {
		return pa.errorf(key, err)
	}
	*dst = p
	return nil
}

// name returns the :name keyword, or "" when absent.
func (pa kwArgs) name() (string, error) {
	v, ok := pa.kw["name"]
	if !ok {
		return "", nil
	}
	s, err := toString(v)
	if err != nil {
		return "", pa.errorf("name", err)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt accepts integers and floats with no fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool accepts true, false and nil.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	if s == zygo.SexpNull {
		return false, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toPoint(s zygo.Sexp) (geom.Point, error) {
	if v, ok := s.(*sexpPoint); ok {
		return v.p, nil
	}
	return geom.Point{}, fmt.Errorf("expected vec2 or vec3, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

func isList(s zygo.Sexp) bool {
	switch s.(type) {
	case *zygo.SexpPair, *zygo.SexpArray:
		return true
	}
	return s == zygo.SexpNull
}

// flatten expands lists and arrays in args, recursively, so a form takes
// its items either inline or grouped.
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		if !isList(a) {
			out = append(out, a)
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, err
		}
		inner, err := flatten(items)
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return out, nil
}

// collect flattens args and converts every item with conv.
func collect[T any](args []zygo.Sexp, conv func(zygo.Sexp) (T, error)) ([]T, error) {
	items, err := flatten(args)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for i, it := range items {
		v, err := conv(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// toPolygon accepts a polygon or a ring, which becomes a polygon without
// holes.
func toPolygon(s zygo.Sexp) (geom.Polygon, error) {
	switch v := s.(type) {
	case *sexpPolygon:
		return v.poly, nil
	case *sexpRing:
		return geom.Polygon{v.ring}, nil
	}
	return nil, fmt.Errorf("expected polygon or ring, got %T (%s)", s, s.SexpString(nil))
}

func toRing(s zygo.Sexp) (geom.Ring, error) {
	if v, ok := s.(*sexpRing); ok {
		return v.ring, nil
	}
	return nil, fmt.Errorf("expected ring, got %T (%s)", s, s.SexpString(nil))
}

func toLine(s zygo.Sexp) (geom.Polyline, error) {
	if v, ok := s.(*sexpLine); ok {
		return v.line, nil
	}
	return nil, fmt.Errorf("expected line, got %T (%s)", s, s.SexpString(nil))
}

// toSpine accepts a line as a list of 3D points.
func toSpine(s zygo.Sexp) ([]geom.Point, error) {
	l, err := toLine(s)
	if err != nil {
		return nil, err
	}
	return []geom.Point(l), nil
}
