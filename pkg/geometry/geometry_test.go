package geometry

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

func TestRemap_ThreeSurfaceScenario(t *testing.T) {
	// Windows are [0,0.6], [0.2,0.8] and [0.4,1.0].
	want := []float64{0.833, 0.5, 0.167}
	for i, w := range want {
		got, err := Remap(0.5, i, 0.2)
		if err != nil {
			t.Fatalf("surface %d: unexpected error %v", i, err)
		}
		if !approx(got, w) {
			t.Errorf("surface %d: expected %.3f, got %.4f", i, w, got)
		}
	}
}

func TestRemap_MonotonicAndBounded(t *testing.T) {
	offsets := []float64{0, 0.05, 0.1, 0.2, 0.24}
	for n := 1; n <= 6; n++ {
		for _, f := range offsets {
			if f*2*float64(n-1) >= 1 {
				continue
			}
			for i := 0; i < n; i++ {
				prev := -1.0
				for step := -20; step <= 120; step++ {
					x := float64(step) / 100
					got, err := Remap(x, i, f)
					if err != nil {
						t.Fatalf("n=%d f=%v i=%d: unexpected error %v", n, f, i, err)
					}
					if got < 0 || got > 1 {
						t.Errorf("n=%d f=%v i=%d x=%v: expected [0,1], got %v", n, f, i, x, got)
					}
					if got < prev {
						t.Errorf("n=%d f=%v i=%d x=%v: expected monotonic, got %v after %v", n, f, i, x, got, prev)
					}
					prev = got
				}
			}
		}
	}
}

func TestRemap_DegenerateWindow(t *testing.T) {
	got, err := Remap(0.7, 0, 0.5)
	if got != 0 {
		t.Errorf("Expected fallback 0, got %v", got)
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if cfgErr.Field != "offset" {
		t.Errorf("Expected field offset, got %q", cfgErr.Field)
	}
}

func TestRemap_NaNInput(t *testing.T) {
	got, err := Remap(math.NaN(), 1, 0.2)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if math.IsNaN(got) {
		t.Error("Expected NaN input to produce a number")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(3, 0.2); err != nil {
		t.Errorf("Expected 3 surfaces at 0.2 to be valid, got %v", err)
	}
	if err := Validate(0, 0.2); err == nil {
		t.Error("Expected zero surfaces to be rejected")
	}
	if err := Validate(3, 0.6); err == nil {
		t.Error("Expected offset 0.6 to be rejected")
	}
	if err := Validate(4, 0.1); err != nil {
		t.Errorf("Expected 4 surfaces at 0.1 to be valid, got %v", err)
	}

	// Windows of 4 surfaces at 0.2 reach 1.2, so surface 3 never gets to 1.
	var cfgErr *ConfigurationError
	if err := Validate(4, 0.2); !errors.As(err, &cfgErr) || cfgErr.Field != "offset" {
		t.Errorf("Expected offset ConfigurationError for 4 surfaces at 0.2, got %v", err)
	}
	if got, _ := Remap(1, 3, 0.2); got >= 1 {
		t.Errorf("Expected surface 3 to stop short of 1, got %v", got)
	}
}

func TestSplit(t *testing.T) {
	surfaces := Split(3240, 1920, 3)
	if len(surfaces) != 3 {
		t.Fatalf("Expected 3 surfaces, got %d", len(surfaces))
	}
	for i, s := range surfaces {
		if s.Width != 1080 || s.Height != 1920 {
			t.Errorf("surface %d: expected 1080x1920, got %vx%v", i, s.Width, s.Height)
		}
		if s.X != float64(i)*1080 {
			t.Errorf("surface %d: expected x=%d, got %v", i, i*1080, s.X)
		}
		if s.CenterX != s.X+540 || s.CenterY != 960 {
			t.Errorf("surface %d: unexpected center (%v,%v)", i, s.CenterX, s.CenterY)
		}
	}
}

func TestLayout_KeepsOrderAndLength(t *testing.T) {
	surfaces := Split(900, 400, 3)
	first := &surfaces[0]
	Layout(surfaces, 301, 200)

	if len(surfaces) != 3 {
		t.Fatalf("Expected length 3, got %d", len(surfaces))
	}
	if first != &surfaces[0] {
		t.Error("Expected layout to recompute in place")
	}
	if surfaces[2].X != 200 || surfaces[2].Width != 100 {
		t.Errorf("Expected floor split, got x=%v w=%v", surfaces[2].X, surfaces[2].Width)
	}
}

func TestFit(t *testing.T) {
	// Wide window: height bound.
	x, y, w, h := Fit(4000, 1920, 1080, 1920, 3)
	if w != 3240 || h != 1920 || x != 380 || y != 0 {
		t.Errorf("Expected 3240x1920 at (380,0), got %vx%v at (%v,%v)", w, h, x, y)
	}

	// Tall window: width bound.
	_, y, w, h = Fit(1620, 1920, 1080, 1920, 3)
	if w != 1620 || h != 960 || y != 480 {
		t.Errorf("Expected 1620x960 at y=480, got %vx%v at y=%v", w, h, y)
	}
}

func TestProject(t *testing.T) {
	snap := Snapshot{
		Normal:    Vec3{X: 0.5, Y: 0.25, Z: 1},
		ViewportW: 3000,
		ViewportH: 1000,
		Surfaces:  Split(3000, 1000, 3),
	}

	v, err := Project(snap, 1, 0.2)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !approx(v.Normal.X, 0.5) {
		t.Errorf("Expected local x 0.5, got %v", v.Normal.X)
	}
	if !approx(v.Position.X, 500) {
		t.Errorf("Expected position x 500, got %v", v.Position.X)
	}
	if v.Position.Y != 250 {
		t.Errorf("Expected position y 250, got %v", v.Position.Y)
	}
	if v.VW != 10 || v.VH != 10 {
		t.Errorf("Expected vw=vh=10, got %v/%v", v.VW, v.VH)
	}

	v.Surfaces[0].Width = -1
	if snap.Surfaces[0].Width == -1 {
		t.Error("Expected view surfaces to be a copy")
	}
}

func TestProjectAll_SameSnapshotEverySurface(t *testing.T) {
	snap := Snapshot{
		Normal:    Vec3{X: 0.9, Y: 0.5, Z: 0.7},
		ViewportW: 300,
		ViewportH: 100,
		Surfaces:  Split(300, 100, 3),
	}
	views, err := ProjectAll(snap, 0.2)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for i, v := range views {
		if v.Surface != i {
			t.Errorf("Expected surface index %d, got %d", i, v.Surface)
		}
		if v.Normal.Y != 0.5 || v.Normal.Z != 0.7 {
			t.Errorf("surface %d: expected shared y/z, got %v/%v", i, v.Normal.Y, v.Normal.Z)
		}
	}
}
