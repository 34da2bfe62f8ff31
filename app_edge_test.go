package polymesh

import (
	"fmt"
	"strings"
	"testing"

	"github.com/chazu/polymesh/pkg/config"
)

const squareRing = `(ring (vec2 0 0) (vec2 10 0) (vec2 10 10) (vec2 0 10))`

// mustParts evaluates source and fails on any error.
func mustParts(t *testing.T, app *App, source string) EvalResult {
	t.Helper()
	result := app.Evaluate(source)
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	return result
}

func hasMessage(list []EvalErrorData, substr string) bool {
	for _, e := range list {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Empty and comment-only sources
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	result := newTestApp().Evaluate("")

	if len(result.Errors) != 0 || len(result.Parts) != 0 || len(result.Warnings) != 0 {
		t.Errorf("expected an empty result, got %+v", result)
	}
	// Slices must be non-nil so JSON encodes [] rather than null.
	if result.Parts == nil {
		t.Error("Parts should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

func TestE2EWhitespaceOnly(t *testing.T) {
	result := newTestApp().Evaluate("   \n\t\n   ")
	if len(result.Errors) > 0 || len(result.Parts) != 0 {
		t.Errorf("expected an empty result, got %+v", result)
	}
}

func TestE2ECommentsOnly(t *testing.T) {
	source := `
;; This is a comment
;; Another comment
; And another
`
	result := newTestApp().Evaluate(source)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for comments-only source: %v", result.Errors)
	}
	if len(result.Parts) != 0 {
		t.Errorf("expected 0 parts for comments-only source, got %d", len(result.Parts))
	}
}

// ---------------------------------------------------------------------------
// Script errors
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(plane :name \"test\""
	result := newTestApp().Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Parts) != 0 {
		t.Errorf("expected 0 parts on syntax error, got %d", len(result.Parts))
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
}

func TestE2EUndefinedPartReference(t *testing.T) {
	source := `
(extrude-polygon ` + squareRing + ` :name "shelf")
(group "unit"
  (place (part "nonexistent") :at (vec3 0 0 0)))
`
	result := newTestApp().Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for undefined part reference")
	}
	if !hasMessage(result.Errors, "nonexistent") {
		t.Errorf("expected error mentioning 'nonexistent', got: %v", result.Errors)
	}
	if len(result.Parts) != 0 {
		t.Errorf("expected 0 parts on error, got %d", len(result.Parts))
	}
}

// ---------------------------------------------------------------------------
// Degenerate geometry is reported, never a panic
// ---------------------------------------------------------------------------

func TestE2EZeroSizeBox(t *testing.T) {
	result := newTestApp().Evaluate(`(box 0 10 10 :name "flat")`)

	if len(result.Errors) == 0 {
		t.Fatal("expected a validation error for a zero-size box")
	}
	if !hasMessage(result.Errors, "flat") {
		t.Errorf("error should name the node, got %v", result.Errors)
	}
	if len(result.Parts) != 0 {
		t.Errorf("expected 0 parts, got %d", len(result.Parts))
	}
}

func TestE2ENegativeRodRadius(t *testing.T) {
	result := newTestApp().Evaluate(`(rod :name "r" :height 10 :radius -1)`)
	if len(result.Errors) == 0 {
		t.Fatal("expected a validation error for a negative radius")
	}
}

func TestE2ECollapsedLineWarns(t *testing.T) {
	source := `
(extrude-line (line (vec2 5 5) (vec2 5 5)) :name "dot")
(plane :name "ok")
`
	result := mustParts(t, newTestApp(), source)

	if !hasMessage(result.Warnings, "dot") {
		t.Errorf("expected a warning about the collapsed line, got %v", result.Warnings)
	}
	if len(result.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(result.Parts))
	}
	if result.Parts[0].TriangleCount() != 0 {
		t.Error("a collapsed line should produce an empty part")
	}
}

func TestE2EEmptyGroupWarns(t *testing.T) {
	result := mustParts(t, newTestApp(), `(group "nothing")`)
	if !hasMessage(result.Warnings, "empty") {
		t.Errorf("expected an empty group warning, got %v", result.Warnings)
	}
	if len(result.Parts) != 0 {
		t.Errorf("expected 0 parts, got %d", len(result.Parts))
	}
}

// ---------------------------------------------------------------------------
// Rapid evaluation (debounce simulation): no panics
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	app := newTestApp()

	sources := []string{
		`(plane :name "a")`,
		`(extrude-polygon ` + squareRing + ` :name "b")`,
		`(+ 1 2)`,
		``,
		`(plane :name "c"`,
		`(tube (line (vec3 0 0 0) (vec3 0 0 5)) :name "d")`,
		`(part "missing")`,
		`(box 1 1 1 :name "e")`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}
}

// ---------------------------------------------------------------------------
// Scene structure
// ---------------------------------------------------------------------------

func TestE2EMultipleGroupsWithSharedParts(t *testing.T) {
	source := `
(extrude-polygon ` + squareRing + ` :name "panel")
(extrude-line (line (vec2 0 0) (vec2 10 0)) :name "rail")

(group "frame-a"
  (place (part "panel") :at (vec3 0 0 0))
  (place (part "rail")  :at (vec3 0 20 0)))

(group "frame-b"
  (place (part "panel") :at (vec3 50 0 0))
  (place (part "rail")  :at (vec3 50 20 0)))
`
	result := mustParts(t, newTestApp(), source)

	// Each group places both parts, so the shared parts mesh twice.
	if len(result.Parts) != 4 {
		t.Fatalf("expected 4 parts, got %d", len(result.Parts))
	}
	a, b := result.Parts[0], result.Parts[2]
	if a.Name != "panel" || b.Name != "panel" {
		t.Fatalf("unexpected order: %q, %q", a.Name, b.Name)
	}
	if got := b.Position[0] - a.Position[0]; got != 50 {
		t.Errorf("second panel offset = %v, want 50", got)
	}
}

func TestE2EStandaloneShapesAreRoots(t *testing.T) {
	source := `
(plane :name "p1")
(plane :name "p2")
(place (plane :name "p3") :at (vec3 0 0 1))
`
	result := mustParts(t, newTestApp(), source)
	if len(result.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(result.Parts))
	}
}

func TestE2ENestedArithmeticDef(t *testing.T) {
	source := `
(def base 4)
(def w (* base 2))
(def h (/ w 4))
(plane :name "p" :width w :height h)
`
	result := mustParts(t, newTestApp(), source)
	p := result.Parts[0]
	// The plane is centred on the origin, so the first vertex is the
	// top-left corner.
	if p.Position[0] != -4 || p.Position[1] != 1 {
		t.Errorf("first vertex = (%v, %v), want (-4, 1)", p.Position[0], p.Position[1])
	}
}

func TestE2ESolidPlacement(t *testing.T) {
	d := config.Default()
	d.Kernel.MeshCells = 16
	app := NewApp(WithDefaults(d))

	result := mustParts(t, app, `(place (box 2 2 2 :name "cube") :at (vec3 100 0 0))`)
	if len(result.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(result.Parts))
	}
	p := result.Parts[0]
	for i := 0; i < len(p.Position); i += 3 {
		if x := p.Position[i]; x < 98 || x > 104 {
			t.Fatalf("vertex x = %v, expected near [100, 102]", x)
		}
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	var sb strings.Builder
	n := len(colorPalette) + 1
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "(place (plane :name \"p%d\") :at (vec3 %d 0 0))\n", i, i*2)
	}
	result := mustParts(t, newTestApp(), sb.String())

	if len(result.Parts) != n {
		t.Fatalf("expected %d parts, got %d", n, len(result.Parts))
	}
	for _, m := range result.Parts {
		if m.Color == "" {
			t.Errorf("part %q should have a color assigned", m.Name)
		}
	}
	if result.Parts[0].Color != result.Parts[n-1].Color {
		t.Error("palette should wrap around")
	}
}
