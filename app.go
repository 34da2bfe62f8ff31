// Package polymesh turns scripts into triangle meshes. App runs the full
// pipeline: evaluate a script into a scene, validate it, tessellate every
// shape and solid, and return JSON-ready mesh data.
package polymesh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chazu/polymesh/pkg/config"
	"github.com/chazu/polymesh/pkg/engine"
	"github.com/chazu/polymesh/pkg/graph"
	"github.com/chazu/polymesh/pkg/kernel"
	"github.com/chazu/polymesh/pkg/kernel/sdfx"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/tessellate"
	"github.com/samber/lo"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates scripts into meshes.
type App struct {
	engine   *engine.Engine
	kernel   kernel.Kernel
	defaults config.Defaults
	logger   *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithDefaults sets the builder defaults and the kernel resolution.
func WithDefaults(d config.Defaults) Option {
	return func(a *App) { a.defaults = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithKernel replaces the sdfx kernel built from the defaults.
func WithKernel(k kernel.Kernel) Option {
	return func(a *App) { a.kernel = k }
}

// NewApp creates an App with an engine and the sdfx kernel.
func NewApp(opts ...Option) *App {
	a := &App{defaults: config.Default(), logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(a)
	}
	a.engine = engine.NewEngineWithDefaults(a.defaults)
	if a.kernel == nil {
		k := sdfx.NewWithCells(a.defaults.Kernel.MeshCells)
		k.SetUVScale(a.defaults.Kernel.UVScale)
		a.kernel = k
	}
	return a
}

// MeshData is the JSON form of one part.
type MeshData struct {
	Name     string    `json:"name"`
	NodeID   string    `json:"nodeId,omitempty"`
	Position []float32 `json:"position"`
	Normal   []float32 `json:"normal"`
	UV       []float32 `json:"uv"`
	Indices  []uint32  `json:"indices"`
	Color    string    `json:"color"`
}

// VertexCount returns the number of vertices.
func (m MeshData) VertexCount() int { return len(m.Position) / 3 }

// TriangleCount returns the number of triangles.
func (m MeshData) TriangleCount() int { return len(m.Indices) / 3 }

func (m MeshData) buffers() *mesh.Buffers {
	return &mesh.Buffers{Position: m.Position, Normal: m.Normal, UV: m.UV, Indices: m.Indices}
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation. Slices are never nil
// so they encode as [] rather than null.
type EvalResult struct {
	Parts     []MeshData      `json:"parts"`
	Vertices  int             `json:"vertices"`
	Triangles int             `json:"triangles"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []EvalErrorData `json:"warnings"`
}

// OK reports whether the evaluation produced no errors.
func (r EvalResult) OK() bool { return len(r.Errors) == 0 }

// Evaluate runs source through the engine, validation and tessellation.
// Every failure is reported in the result's Errors.
func (a *App) Evaluate(source string) EvalResult {
	return a.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate with script evaluation bounded by ctx.
func (a *App) EvaluateContext(ctx context.Context, source string) EvalResult {
	start := time.Now()
	result := EvalResult{
		Parts:    []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the source into a scene.
	s, evalErrs, err := a.engine.EvaluateContext(ctx, source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		a.logger.Debug("script errors", "count", len(evalErrs))
		return result
	}

	// Step 2: Validate. Warnings are reported alongside the meshes.
	vr := graph.ValidateAll(s)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: describe(s, w.NodeID, w.Message)})
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: describe(s, e.NodeID, e.Message)})
		}
		a.logger.Debug("scene invalid", "errors", len(vr.Errors))
		return result
	}

	// Step 3: Tessellate the scene into triangle meshes.
	parts, err := tessellate.Tessellate(s, a.kernel)
	if err != nil {
		a.logger.Error("tessellate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	// Step 4: Convert to the JSON form.
	result.Parts = lo.Map(parts, func(p *tessellate.Part, i int) MeshData {
		return MeshData{
			Name:     p.Name,
			NodeID:   p.NodeID.String(),
			Position: p.Buffers.Position,
			Normal:   p.Buffers.Normal,
			UV:       p.Buffers.UV,
			Indices:  p.Buffers.Indices,
			Color:    colorPalette[i%len(colorPalette)],
		}
	})
	result.Vertices = lo.SumBy(result.Parts, MeshData.VertexCount)
	result.Triangles = lo.SumBy(result.Parts, MeshData.TriangleCount)

	a.logger.Info("evaluated",
		"parts", len(result.Parts),
		"vertices", result.Vertices,
		"triangles", result.Triangles,
		"warnings", len(result.Warnings),
		"elapsed", time.Since(start))
	return result
}

// MergeParts combines parts into a single mesh named name. The merged
// part takes the first part's color.
func MergeParts(name string, parts []MeshData) MeshData {
	m := mesh.Merge(lo.Map(parts, func(p MeshData, _ int) *mesh.Buffers { return p.buffers() })...)
	out := MeshData{
		Name:     name,
		Position: lo.Ternary(m.Position != nil, m.Position, []float32{}),
		Normal:   lo.Ternary(m.Normal != nil, m.Normal, []float32{}),
		UV:       lo.Ternary(m.UV != nil, m.UV, []float32{}),
		Indices:  lo.Ternary(m.Indices != nil, m.Indices, []uint32{}),
	}
	if len(parts) > 0 {
		out.Color = parts[0].Color
	}
	return out
}

// describe prefixes msg with the node's label.
func describe(s *graph.Scene, id graph.NodeID, msg string) string {
	if n := s.Get(id); n != nil {
		return fmt.Sprintf("%s: %s", n.Label(), msg)
	}
	return msg
}
