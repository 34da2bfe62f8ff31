package graph

import (
	"errors"
	"fmt"

	"github.com/chazu/polymesh/pkg/geom"
	"github.com/chazu/polymesh/pkg/spine"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry checks every payload. Inputs the builders reject are
// errors. Inputs the builders accept but turn into empty or clamped
// geometry are warnings.
func validateGeometry(s *Scene) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, id := range s.Order {
		n := s.Nodes[id]
		e, w := validatePayload(n)
		for _, msg := range e {
			errs = append(errs, ValidationError{NodeID: n.ID, Message: msg, Severity: SeverityError})
		}
		for _, msg := range w {
			warnings = append(warnings, ValidationWarning{NodeID: n.ID, Message: msg})
		}
	}
	return errs, warnings
}

func validatePayload(n *Node) (errs, warnings []string) {
	switch d := n.Data.(type) {
	case PolygonData:
		errs = append(errs, checkPolygons(d.Polygons)...)
		if d.Options.Depth < 0 {
			warnings = append(warnings, fmt.Sprintf("depth %.4f is negative and is clamped to 0", d.Options.Depth))
		}
		if d.Options.SkipTop && d.Options.SkipBottom {
			warnings = append(warnings, "both caps are skipped")
		}

	case LineData:
		e, w := checkLines(d.Lines)
		errs, warnings = append(errs, e...), append(warnings, w...)
		warnings = append(warnings, checkNonNegative("width", d.Options.Width, "clamped to 0")...)
		warnings = append(warnings, checkNonNegative("depth", d.Options.Depth, "clamped to 0")...)

	case SlopeData:
		e, w := checkLines(d.Lines)
		errs, warnings = append(errs, e...), append(warnings, w...)
		warnings = append(warnings, checkNonNegative("width", d.Options.Width, "clamped to 0")...)
		warnings = append(warnings, checkNonNegative("side depth", d.Options.SideDepth, "clamped to 0")...)

	case PathData:
		e, w := checkSpines(d.Spines, d.Options.CornerRadius, d.Options.CornerSplit)
		errs, warnings = append(errs, e...), append(warnings, w...)
		warnings = append(warnings, checkNonNegative("width", d.Options.Width, "replaced by 1")...)

	case TubeData:
		e, w := checkSpines(d.Spines, d.Options.CornerRadius, d.Options.CornerSplit)
		errs, warnings = append(errs, e...), append(warnings, w...)
		warnings = append(warnings, checkNonNegative("radius", d.Options.Radius, "replaced by 1")...)

	case SweepData:
		errs = append(errs, checkPolygons(d.Polygons)...)
		if len(d.Options.Path) < 2 {
			errs = append(errs, fmt.Sprintf("sweep path has %d points, need at least 2", len(d.Options.Path)))
		} else if _, err := spine.Frames(d.Options.Path, spine.FrameOptions{}); errors.Is(err, geom.ErrDegenerateGeometry) {
			errs = append(errs, "sweep path collapses to a single point")
		}

	case PlaneData:
		if d.Width <= 0 || d.Height <= 0 {
			errs = append(errs, fmt.Sprintf("plane size %.4fx%.4f must be positive", d.Width, d.Height))
		}

	case CylinderData:
		warnings = append(warnings, checkNonNegative("radius", d.Options.Radius, "replaced by 1")...)

	case BoxData:
		for _, c := range []struct {
			axis string
			v    float64
		}{{"X", d.Size.X}, {"Y", d.Size.Y}, {"Z", d.Size.Z}} {
			if c.v <= 0 {
				errs = append(errs, fmt.Sprintf("box dimension %s is %.4f, must be positive", c.axis, c.v))
			}
		}

	case RodData:
		if d.Height <= 0 {
			errs = append(errs, fmt.Sprintf("rod height is %.4f, must be positive", d.Height))
		}
		if d.Radius <= 0 {
			errs = append(errs, fmt.Sprintf("rod radius is %.4f, must be positive", d.Radius))
		}

	case TransformData:
		if d.Translation == nil && d.Rotation == nil {
			warnings = append(warnings, "placement has no translation or rotation")
		}
		if len(n.Children) == 0 {
			warnings = append(warnings, "placement has no children")
		}

	case GroupData:
		if len(n.Children) == 0 {
			warnings = append(warnings, fmt.Sprintf("group %q is empty", n.Label()))
		}
	}
	return errs, warnings
}

func checkPolygons(polys []geom.Polygon) []string {
	var errs []string
	if len(polys) == 0 {
		errs = append(errs, "no polygons")
	}
	for i, p := range polys {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("polygon %d: %v", i, err))
		}
	}
	return errs
}

func checkLines(lines []geom.Polyline) (errs, warnings []string) {
	if len(lines) == 0 {
		errs = append(errs, "no lines")
	}
	for i, l := range lines {
		switch {
		case len(l) < 2:
			errs = append(errs, fmt.Sprintf("line %d has %d points, need at least 2", i, len(l)))
		case collapsed(l):
			warnings = append(warnings, fmt.Sprintf("line %d collapses to a single point and produces no geometry", i))
		}
	}
	return errs, warnings
}

func checkSpines(spines [][]geom.Point, radius float64, split int) (errs, warnings []string) {
	if len(spines) == 0 {
		errs = append(errs, "no spines")
	}
	for i, pts := range spines {
		if len(pts) < 2 {
			errs = append(errs, fmt.Sprintf("spine %d has %d points, need at least 2", i, len(pts)))
			continue
		}
		if _, err := spine.Frames(pts, spine.FrameOptions{}); errors.Is(err, geom.ErrDegenerateGeometry) {
			warnings = append(warnings, fmt.Sprintf("spine %d collapses to a single point and produces no geometry", i))
		}
	}
	warnings = append(warnings, checkNonNegative("corner radius", radius, "clamped to 0")...)
	if split < 0 {
		warnings = append(warnings, fmt.Sprintf("corner split %d is negative and is ignored", split))
	}
	return errs, warnings
}

func checkNonNegative(name string, v float64, fallback string) []string {
	if v < 0 {
		return []string{fmt.Sprintf("%s %.4f is negative and is %s", name, v, fallback)}
	}
	return nil
}

// collapsed reports whether every point of l shares the first point's x
// and y, which leaves nothing to widen.
func collapsed(l geom.Polyline) bool {
	for _, p := range l[1:] {
		if p.X != l[0].X || p.Y != l[0].Y {
			return false
		}
	}
	return true
}
