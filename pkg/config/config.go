// Package config holds the builder defaults used when a script leaves an
// option out. Defaults are read from TOML or YAML on top of the built-in
// values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/polymesh/pkg/extrude"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a config file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("config: unsupported config file extension %q", filepath.Ext(path))
}

// Defaults holds one section per shape family plus the kernel settings.
type Defaults struct {
	Polygon  PolygonDefaults  `toml:"polygon" yaml:"polygon"`
	Line     LineDefaults     `toml:"line" yaml:"line"`
	Slope    SlopeDefaults    `toml:"slope" yaml:"slope"`
	Path     PathDefaults     `toml:"path" yaml:"path"`
	Tube     TubeDefaults     `toml:"tube" yaml:"tube"`
	Sweep    SweepDefaults    `toml:"sweep" yaml:"sweep"`
	Cylinder CylinderDefaults `toml:"cylinder" yaml:"cylinder"`
	Kernel   KernelDefaults   `toml:"kernel" yaml:"kernel"`
}

type PolygonDefaults struct {
	Depth      float64 `toml:"depth" yaml:"depth"`
	SkipTop    bool    `toml:"skip_top" yaml:"skip_top"`
	SkipBottom bool    `toml:"skip_bottom" yaml:"skip_bottom"`
}

func (d PolygonDefaults) Options() extrude.PolygonOptions {
	return extrude.PolygonOptions{Depth: d.Depth, SkipTop: d.SkipTop, SkipBottom: d.SkipBottom}
}

type LineDefaults struct {
	Depth             float64 `toml:"depth" yaml:"depth"`
	Width             float64 `toml:"width" yaml:"width"`
	CutCorner         bool    `toml:"cut_corner" yaml:"cut_corner"`
	BottomStickGround bool    `toml:"bottom_stick_ground" yaml:"bottom_stick_ground"`
	PathUV            bool    `toml:"path_uv" yaml:"path_uv"`
}

func (d LineDefaults) Options() extrude.LineOptions {
	return extrude.LineOptions{
		Depth:             d.Depth,
		Width:             d.Width,
		CutCorner:         d.CutCorner,
		BottomStickGround: d.BottomStickGround,
		PathUV:            d.PathUV,
	}
}

type SlopeDefaults struct {
	Depth             float64 `toml:"depth" yaml:"depth"`
	SideDepth         float64 `toml:"side_depth" yaml:"side_depth"`
	Width             float64 `toml:"width" yaml:"width"`
	Side              string  `toml:"side" yaml:"side"` // "left" or "right"
	BottomStickGround bool    `toml:"bottom_stick_ground" yaml:"bottom_stick_ground"`
	PathUV            bool    `toml:"path_uv" yaml:"path_uv"`
}

func (d SlopeDefaults) Options() extrude.SlopeOptions {
	side, _ := ParseSide(d.Side)
	return extrude.SlopeOptions{
		Depth:             d.Depth,
		SideDepth:         d.SideDepth,
		Width:             d.Width,
		Side:              side,
		BottomStickGround: d.BottomStickGround,
		PathUV:            d.PathUV,
	}
}

// ParseSide maps "left" and "right" to a slope side. Empty means left.
func ParseSide(s string) (extrude.Side, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return extrude.SideLeft, nil
	case "right":
		return extrude.SideRight, nil
	}
	return extrude.SideLeft, fmt.Errorf("invalid side %q, expected left or right", s)
}

type PathDefaults struct {
	Width        float64 `toml:"width" yaml:"width"`
	CornerRadius float64 `toml:"corner_radius" yaml:"corner_radius"`
	CornerSplit  int     `toml:"corner_split" yaml:"corner_split"`
}

func (d PathDefaults) Options() extrude.PathOptions {
	return extrude.PathOptions{Width: d.Width, CornerRadius: d.CornerRadius, CornerSplit: d.CornerSplit}
}

type TubeDefaults struct {
	Radius         float64 `toml:"radius" yaml:"radius"`
	RadialSegments int     `toml:"radial_segments" yaml:"radial_segments"`
	CornerRadius   float64 `toml:"corner_radius" yaml:"corner_radius"`
	CornerSplit    int     `toml:"corner_split" yaml:"corner_split"`
	StartRad       float64 `toml:"start_rad" yaml:"start_rad"`
}

func (d TubeDefaults) Options() extrude.TubeOptions {
	return extrude.TubeOptions{
		Radius:         d.Radius,
		RadialSegments: d.RadialSegments,
		CornerRadius:   d.CornerRadius,
		CornerSplit:    d.CornerSplit,
		StartRad:       d.StartRad,
	}
}

type SweepDefaults struct {
	CornerRadius float64 `toml:"corner_radius" yaml:"corner_radius"`
	CornerSplit  int     `toml:"corner_split" yaml:"corner_split"`
	OpenEnd      bool    `toml:"open_end" yaml:"open_end"`
	ZeroCapUV    bool    `toml:"zero_cap_uv" yaml:"zero_cap_uv"`
}

// Options returns the sweep options without a path.
func (d SweepDefaults) Options() extrude.OnPathOptions {
	return extrude.OnPathOptions{
		CornerRadius: d.CornerRadius,
		CornerSplit:  d.CornerSplit,
		OpenEnd:      d.OpenEnd,
		ZeroCapUV:    d.ZeroCapUV,
	}
}

type CylinderDefaults struct {
	Radius         float64 `toml:"radius" yaml:"radius"`
	Height         float64 `toml:"height" yaml:"height"`
	RadialSegments int     `toml:"radial_segments" yaml:"radial_segments"`
}

func (d CylinderDefaults) Options() extrude.CylinderOptions {
	return extrude.CylinderOptions{Radius: d.Radius, Height: d.Height, RadialSegments: d.RadialSegments}
}

// KernelDefaults configures the solid kernel.
type KernelDefaults struct {
	// MeshCells is the marching cubes resolution along the longest axis.
	MeshCells int `toml:"mesh_cells" yaml:"mesh_cells"`

	// UVScale is the world size of one texture repeat on solids.
	UVScale float64 `toml:"uv_scale" yaml:"uv_scale"`

	// RodSegments is the facet count for rods that do not set one.
	RodSegments int `toml:"rod_segments" yaml:"rod_segments"`
}

// Default returns the built-in defaults. The shape sections match the
// builders' own defaults.
func Default() Defaults {
	line := extrude.DefaultLineOptions()
	slope := extrude.DefaultSlopeOptions()
	tube := extrude.DefaultTubeOptions()
	cyl := extrude.DefaultCylinderOptions()
	return Defaults{
		Polygon: PolygonDefaults{Depth: extrude.DefaultPolygonOptions().Depth},
		Line:    LineDefaults{Depth: line.Depth, Width: line.Width},
		Slope:   SlopeDefaults{Depth: slope.Depth, Width: slope.Width, Side: slope.Side.String()},
		Path:    PathDefaults{Width: 1, CornerSplit: extrude.DefaultPathOptions().CornerSplit},
		Tube: TubeDefaults{
			Radius:         tube.Radius,
			RadialSegments: tube.RadialSegments,
			StartRad:       tube.StartRad,
		},
		Sweep:    SweepDefaults{CornerSplit: 10},
		Cylinder: CylinderDefaults{Radius: cyl.Radius, Height: cyl.Height, RadialSegments: cyl.RadialSegments},
		Kernel:   KernelDefaults{MeshCells: 200, UVScale: 1, RodSegments: 32},
	}
}

// Load reads defaults from path, picking the format from its extension.
// Keys missing from the file keep their built-in values.
func Load(path string) (Defaults, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Defaults{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("config: %w", err)
	}
	d, err := Parse(data, format)
	if err != nil {
		return Defaults{}, fmt.Errorf("%w (in %s)", err, path)
	}
	return d, nil
}

// Parse decodes data over the built-in defaults and validates the result.
// Unknown keys are errors.
func Parse(data []byte, format Format) (Defaults, error) {
	d := Default()
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return Defaults{}, fmt.Errorf("config: toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and leaves d untouched.
		if err := dec.Decode(&d); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return Defaults{}, fmt.Errorf("config: yaml: %w", err)
		}
	default:
		return Defaults{}, fmt.Errorf("config: unsupported format %q", format)
	}
	if err := d.Validate(); err != nil {
		return Defaults{}, err
	}
	return d, nil
}

// Marshal encodes d in the given format.
func Marshal(d Defaults, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(d)
	case FormatYAML:
		return yaml.Marshal(d)
	}
	return nil, fmt.Errorf("config: unsupported format %q", format)
}

// Validate reports every out-of-range value.
func (d Defaults) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, v))
		}
	}

	nonNegative("polygon.depth", d.Polygon.Depth)
	nonNegative("line.depth", d.Line.Depth)
	positive("line.width", d.Line.Width)
	nonNegative("slope.depth", d.Slope.Depth)
	nonNegative("slope.side_depth", d.Slope.SideDepth)
	positive("slope.width", d.Slope.Width)
	if _, err := ParseSide(d.Slope.Side); err != nil {
		errs = append(errs, fmt.Errorf("slope.side: %w", err))
	}
	positive("path.width", d.Path.Width)
	nonNegative("path.corner_radius", d.Path.CornerRadius)
	nonNegative("path.corner_split", float64(d.Path.CornerSplit))
	positive("tube.radius", d.Tube.Radius)
	if d.Tube.RadialSegments < 3 {
		errs = append(errs, fmt.Errorf("tube.radial_segments must be at least 3, got %d", d.Tube.RadialSegments))
	}
	nonNegative("tube.corner_radius", d.Tube.CornerRadius)
	nonNegative("tube.corner_split", float64(d.Tube.CornerSplit))
	nonNegative("sweep.corner_radius", d.Sweep.CornerRadius)
	nonNegative("sweep.corner_split", float64(d.Sweep.CornerSplit))
	positive("cylinder.radius", d.Cylinder.Radius)
	positive("cylinder.height", d.Cylinder.Height)
	if d.Cylinder.RadialSegments < 4 {
		errs = append(errs, fmt.Errorf("cylinder.radial_segments must be at least 4, got %d", d.Cylinder.RadialSegments))
	}
	if d.Kernel.MeshCells < 8 {
		errs = append(errs, fmt.Errorf("kernel.mesh_cells must be at least 8, got %d", d.Kernel.MeshCells))
	}
	positive("kernel.uv_scale", d.Kernel.UVScale)
	if d.Kernel.RodSegments < 3 {
		errs = append(errs, fmt.Errorf("kernel.rod_segments must be at least 3, got %d", d.Kernel.RodSegments))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid defaults: %w", errors.Join(errs...))
}
